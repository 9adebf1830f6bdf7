package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/server"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
)

// Corpus is the on-disk document set:
//
//	stopWords: "and in at"
//	documents:
//	  - id: 1
//	    text: curly cat curly tail
//	    status: ACTUAL
//	    ratings: [7, 2, 7]
type Corpus struct {
	StopWords string           `yaml:"stopWords"`
	Documents []CorpusDocument `yaml:"documents"`
}

type CorpusDocument struct {
	ID      int             `yaml:"id"`
	Text    string          `yaml:"text"`
	Status  document.Status `yaml:"status"`
	Ratings []int           `yaml:"ratings"`
}

func loadCorpus(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus %s: %w", path, err)
	}
	var c Corpus
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing corpus %s: %w", path, err)
	}
	return &c, nil
}

// indexInto adds every document to s. Rejected documents are logged and
// skipped; the number of rejections is returned.
func (c *Corpus) indexInto(s *server.SearchServer) int {
	log := logger.WithComponent("corpus")
	rejected := 0
	for _, d := range c.Documents {
		if err := s.AddDocument(d.ID, d.Text, d.Status, d.Ratings); err != nil {
			log.Warn("document rejected", "doc_id", d.ID, "error", err)
			rejected++
		}
	}
	log.Info("corpus indexed", "documents", s.GetDocumentCount(), "rejected", rejected)
	return rejected
}

func demoCorpus() *Corpus {
	return &Corpus{
		StopWords: "and at on in with",
		Documents: []CorpusDocument{
			{1, "lost cat with blue collar", document.Actual, []int{5, 3, 9}},
			{2, "small dog and red leash", document.Actual, []int{6, 2, 8}},
			{3, "parrot in green cage at home", document.Irrelevant, []int{4, 5, 7}},
			{4, "small hamster with brown fur and white spot", document.Actual, []int{3, 6, 5}},
			{5, "fluffy rabbit near the park", document.Banned, []int{2, 2, 6}},
			{6, "ferret with missing tail in city", document.Actual, []int{5, 4, 8}},
			{7, "turtle and lost pet sign", document.Actual, []int{7, 2, 5}},
			{8, "black cat in alley at night", document.Actual, []int{6, 3, 7}},
			{9, "dog with curly hair at shelter", document.Irrelevant, []int{4, 6, 9}},
			{10, "missing pigeon in the square", document.Banned, []int{5, 5, 6}},
			{11, "parrot with blue feathers at cafe with hamster", document.Actual, []int{3, 7, 5}},
			{12, "lost lizard on a warm rock", document.Removed, []int{6, 4, 7}},
			{13, "small kitten and big dog in shelter", document.Actual, []int{5, 3, 8}},
			{14, "white rabbit and brown hamster together", document.Irrelevant, []int{4, 5, 9}},
			{15, "snake lost near the river and trees", document.Banned, []int{3, 6, 7}},
			{16, "big golden retriever with red collar", document.Actual, []int{7, 5, 8}},
			{17, "white parrot in the park lost", document.Banned, []int{6, 4, 9}},
			{18, "hamster with tiny ears and white fur", document.Irrelevant, []int{5, 6, 7}},
			{19, "lost snake near the bushes", document.Actual, []int{3, 7, 6}},
			{20, "black turtle in the pond missing", document.Removed, []int{4, 5, 8}},
		},
	}
}
