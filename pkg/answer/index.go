package answer

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"
)

var tokenRe = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Document is one retrievable chunk of a source file.
type Document struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Text   string `json:"text"`
}

type Match struct {
	Document
	Score float64 `json:"score"`
}

// Index is a TF-IDF vector index with cosine ranking. Idf is smoothed as
// ln((1+n)/(1+df))+1 and document vectors are L2-normalised.
type Index struct {
	mu      sync.RWMutex
	docs    []Document
	vectors []map[string]float64
	idf     map[string]float64
}

func NewIndex() *Index {
	return &Index{idf: map[string]float64{}}
}

func tokenize(text string) []string {
	return tokenRe.FindAllString(strings.ToLower(text), -1)
}

func termCounts(tokens []string) map[string]float64 {
	tf := make(map[string]float64, len(tokens))
	for _, t := range tokens {
		tf[t]++
	}
	return tf
}

func normalize(vec map[string]float64) {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for k, v := range vec {
		vec[k] = v / norm
	}
}

// Build replaces the indexed documents.
func (i *Index) Build(docs []Document) {
	counts := make([]map[string]float64, len(docs))
	df := map[string]int{}
	for n, d := range docs {
		counts[n] = termCounts(tokenize(d.Text))
		for term := range counts[n] {
			df[term]++
		}
	}

	total := float64(len(docs))
	idf := make(map[string]float64, len(df))
	for term, f := range df {
		idf[term] = math.Log((1+total)/(1+float64(f))) + 1
	}

	vectors := make([]map[string]float64, len(docs))
	for n, tf := range counts {
		vec := make(map[string]float64, len(tf))
		for term, c := range tf {
			vec[term] = c * idf[term]
		}
		normalize(vec)
		vectors[n] = vec
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.docs = append([]Document(nil), docs...)
	i.vectors = vectors
	i.idf = idf
}

// Len reports the number of indexed documents.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.docs)
}

// Search returns up to k documents with a positive similarity to query, best first.
func (i *Index) Search(query string, k int) []Match {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if k <= 0 || len(i.docs) == 0 {
		return nil
	}
	q := termCounts(tokenize(query))
	for term, c := range q {
		w, ok := i.idf[term]
		if !ok {
			delete(q, term)
			continue
		}
		q[term] = c * w
	}
	normalize(q)
	if len(q) == 0 {
		return nil
	}

	var matches []Match
	for n, vec := range i.vectors {
		var score float64
		for term, w := range q {
			score += w * vec[term]
		}
		if score > 0 {
			matches = append(matches, Match{Document: i.docs[n], Score: score})
		}
	}
	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Score > matches[b].Score
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches
}
