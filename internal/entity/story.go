package entity

import "github.com/google/uuid"

// DefaultCompletionLength is the sentence count at which a story is
// considered finished when a session does not configure its own.
const DefaultCompletionLength = 3

// Sentence is one contribution to a story. Immutable once appended.
type Sentence struct {
	ID     string `json:"id"`
	Author string `json:"author"`
	Text   string `json:"text"`
}

type Story struct {
	ID               string     `json:"id"`
	Creator          string     `json:"creator"`
	Sentences        []Sentence `json:"sentences"`
	Completed        bool       `json:"completed"`
	CompletionLength int        `json:"completionLength"`
}

func NewStory(creator string, completionLength int) *Story {
	if completionLength <= 0 {
		completionLength = DefaultCompletionLength
	}

	return &Story{
		ID:               uuid.NewString(),
		Creator:          creator,
		CompletionLength: completionLength,
	}
}

// Append adds a sentence and recomputes the completion flag. Sentences
// are append-only and the flag never flips back to false.
func (that *Story) Append(author, text string) *Sentence {
	sentence := Sentence{
		ID:     uuid.NewString(),
		Author: author,
		Text:   text,
	}

	that.Sentences = append(that.Sentences, sentence)

	if len(that.Sentences) >= that.CompletionLength {
		that.Completed = true
	}

	return &that.Sentences[len(that.Sentences)-1]
}
