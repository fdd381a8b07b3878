package chatbot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gilbertordx/rhcp-chatbot/pkg/classifier"
)

// CorpusItem holds the labeled utterances and answer templates for
// one intent.
type CorpusItem struct {
	Intent     string   `json:"intent"`
	Utterances []string `json:"utterances"`
	Answers    []string `json:"answers"`
}

// Corpus is one training-corpus file.
type Corpus struct {
	Name string       `json:"name"`
	Data []CorpusItem `json:"data"`
}

// Corpora is the loaded corpus set, searched in file order.
type Corpora []Corpus

// LoadCorpora reads every *.json corpus file from dir, sorted by
// filename so answer lookup order is stable.
func LoadCorpora(dir string) (Corpora, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list corpora in %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no corpus files in %s", dir)
	}

	var out Corpora
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read corpus %s: %w", filepath.Base(path), err)
		}
		var c Corpus
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("decode corpus %s: %w", filepath.Base(path), err)
		}
		out = append(out, c)
	}
	return out, nil
}

// AnswersFor returns the answer templates of the first corpus item
// carrying the intent, or nil.
func (cs Corpora) AnswersFor(intent string) []string {
	for _, c := range cs {
		for _, item := range c.Data {
			if item.Intent == intent && len(item.Answers) > 0 {
				return item.Answers
			}
		}
	}
	return nil
}

// TrainingExamples flattens the corpora into classifier training
// input, skipping the null intent.
func (cs Corpora) TrainingExamples() []classifier.TrainingExample {
	var out []classifier.TrainingExample
	for _, c := range cs {
		for _, item := range c.Data {
			if item.Intent == "" || item.Intent == "None" || len(item.Utterances) == 0 {
				continue
			}
			out = append(out, classifier.TrainingExample{
				Intent:     item.Intent,
				Utterances: item.Utterances,
			})
		}
	}
	return out
}
