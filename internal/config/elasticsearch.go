package config

import "time"

// ElasticsearchConfig holds the event search index settings. Search is
// disabled when URL is empty.
type ElasticsearchConfig struct {
	URL        string
	Index      string `default:"events"`
	Username   string
	Password   string
	MaxRetries int           `split_words:"true" default:"3"`
	Timeout    time.Duration `default:"30s"`
}

func (c ElasticsearchConfig) Enabled() bool {
	return c.URL != ""
}
