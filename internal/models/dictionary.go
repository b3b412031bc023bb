package models

// DictionaryEntry represents a response entry from the dictionary API
type DictionaryEntry struct {
	Word      string     `json:"word"`
	Phonetic  string     `json:"phonetic,omitempty"`
	Phonetics []Phonetic `json:"phonetics,omitempty"`
	Meanings  []Meaning  `json:"meanings"`
	SourceURL string     `json:"sourceUrl,omitempty"`
}

// Phonetic represents pronunciation information
type Phonetic struct {
	Text  string `json:"text,omitempty"`
	Audio string `json:"audio,omitempty"`
}

// Meaning represents a word meaning with definitions
type Meaning struct {
	PartOfSpeech string       `json:"partOfSpeech"`
	Definitions  []Definition `json:"definitions"`
}

// Definition represents a single dictionary definition
type Definition struct {
	Definition string   `json:"definition"`
	Example    string   `json:"example,omitempty"`
	Synonyms   []string `json:"synonyms,omitempty"`
	Antonyms   []string `json:"antonyms,omitempty"`
}

// DictionaryResponse is what the definition endpoint returns for a stored
// word.
type DictionaryResponse struct {
	WordID     int64     `json:"word_id"`
	Word       string    `json:"word"`
	Phonetic   string    `json:"phonetic,omitempty"`
	AudioURL   string    `json:"audio_url,omitempty"`
	Meanings   []Meaning `json:"meanings"`
	SourceURLs []string  `json:"source_urls,omitempty"`
}
