package model

type Prompt struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Tags      []string  `json:"tags"`
	Embedding []float32 `json:"embedding,omitempty"`
	Ctime     int64     `json:"ctime"`
	Mtime     int64     `json:"mtime"`
}

// Clone returns a deep copy so shared prompt records are never mutated in place.
func (p Prompt) Clone() Prompt {
	out := p
	if len(p.Tags) > 0 {
		out.Tags = make([]string, len(p.Tags))
		copy(out.Tags, p.Tags)
	}
	if len(p.Embedding) > 0 {
		out.Embedding = make([]float32, len(p.Embedding))
		copy(out.Embedding, p.Embedding)
	}
	return out
}
