package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/Thanat-Wut/worddee-api/internal/models"
)

const wordsTable = "words"

var wordColumns = []string{
	"id", "word", "definition", "difficulty_level",
	"part_of_speech", "pronunciation", "example_sentence", "image_url",
	"created_at", "updated_at",
}

// returningWord is appended to writes on stores that support RETURNING.
var returningWord = "RETURNING " + strings.Join(wordColumns, ", ")

// dialect holds the SQL differences between the supported stores.
type dialect struct {
	sb squirrel.StatementBuilderType
	// like is a format string taking a column name; the result must contain a
	// single placeholder for the escaped pattern.
	like string
}

var (
	sqliteDialect = dialect{
		sb:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		like: `lower(%s) LIKE ? ESCAPE '\'`,
	}
	postgresDialect = dialect{
		sb:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		like: `%s ILIKE ? ESCAPE '\'`,
	}
)

func (d dialect) selectWords() squirrel.SelectBuilder {
	return d.sb.Select(wordColumns...).From(wordsTable)
}

func (d dialect) applyFilter(q squirrel.SelectBuilder, filter models.WordFilter) squirrel.SelectBuilder {
	if filter.Difficulty != nil {
		q = q.Where(squirrel.Eq{"difficulty_level": string(*filter.Difficulty)})
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		q = q.Where(squirrel.Or{
			squirrel.Expr(fmt.Sprintf(d.like, "word"), pattern),
			squirrel.Expr(fmt.Sprintf(d.like, "definition"), pattern),
		})
	}
	return q
}

func (d dialect) countQuery(filter models.WordFilter) squirrel.SelectBuilder {
	return d.applyFilter(d.sb.Select("COUNT(*)").From(wordsTable), filter)
}

func (d dialect) listQuery(filter models.WordFilter, offset, limit int) squirrel.SelectBuilder {
	return d.applyFilter(d.selectWords(), filter).
		OrderBy("id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset))
}

func (d dialect) randomQuery(filter models.WordFilter) squirrel.SelectBuilder {
	return d.applyFilter(d.selectWords(), filter).OrderBy("RANDOM()").Limit(1)
}

func (d dialect) byIDQuery(id int64) squirrel.SelectBuilder {
	return d.selectWords().Where(squirrel.Eq{"id": id})
}

func (d dialect) byWordQuery(word string) squirrel.SelectBuilder {
	return d.selectWords().Where(squirrel.Eq{"word": word})
}

func (d dialect) insertQuery(w *models.Word, now time.Time) squirrel.InsertBuilder {
	return d.sb.Insert(wordsTable).
		Columns(
			"word", "definition", "difficulty_level",
			"part_of_speech", "pronunciation", "example_sentence", "image_url",
			"created_at",
		).
		Values(
			w.Word, w.Definition, string(w.DifficultyLevel),
			w.PartOfSpeech, w.Pronunciation, w.ExampleSentence, w.ImageURL,
			now,
		)
}

func (d dialect) updateQuery(id int64, p *models.UpdateWordRequest, now time.Time) squirrel.UpdateBuilder {
	set := map[string]any{"updated_at": now}
	if p.Word != nil {
		set["word"] = *p.Word
	}
	if p.Definition != nil {
		set["definition"] = *p.Definition
	}
	if p.DifficultyLevel != nil {
		set["difficulty_level"] = string(*p.DifficultyLevel)
	}
	if p.PartOfSpeech != nil {
		set["part_of_speech"] = *p.PartOfSpeech
	}
	if p.Pronunciation != nil {
		set["pronunciation"] = *p.Pronunciation
	}
	if p.ExampleSentence != nil {
		set["example_sentence"] = *p.ExampleSentence
	}
	if p.ImageURL != nil {
		set["image_url"] = *p.ImageURL
	}
	return d.sb.Update(wordsTable).
		SetMap(set).
		Where(squirrel.Eq{"id": id})
}

func (d dialect) deleteQuery(id int64) squirrel.DeleteBuilder {
	return d.sb.Delete(wordsTable).Where(squirrel.Eq{"id": id})
}

// likePattern escapes LIKE metacharacters so the term matches literally.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}
