package bagofwords

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// Vocabulary is an ordered, deduplicated list of lowercase terms.
// A term's position is its index in every embedding vector.
type Vocabulary struct {
	words []string
	index map[string]int
}

// NewVocabulary builds a vocabulary from words. Words are lowercased and
// trimmed; blanks and repeats are skipped, so the first occurrence wins.
func NewVocabulary(words []string) *Vocabulary {
	v := &Vocabulary{
		words: make([]string, 0, len(words)),
		index: make(map[string]int, len(words)),
	}
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, ok := v.index[w]; ok {
			continue
		}
		v.index[w] = len(v.words)
		v.words = append(v.words, w)
	}
	return v
}

// LoadVocabulary reads a newline-separated word list.
// Lines starting with '#' are comments.
func LoadVocabulary(path string) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.ConfigurationFailure("open vocabulary", err)
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, domain.ConfigurationFailure("read vocabulary", err)
	}

	v := NewVocabulary(words)
	if v.Len() == 0 {
		return nil, domain.ConfigurationFailure("load vocabulary", fmt.Errorf("%s contains no words", path))
	}
	return v, nil
}

// Len returns the number of terms.
func (v *Vocabulary) Len() int {
	return len(v.words)
}

// Index returns the vector position of word.
func (v *Vocabulary) Index(word string) (int, bool) {
	i, ok := v.index[word]
	return i, ok
}

// Words returns a copy of the terms in index order.
func (v *Vocabulary) Words() []string {
	out := make([]string, len(v.words))
	copy(out, v.words)
	return out
}

// DefaultVocabulary returns the built-in list of common English words.
func DefaultVocabulary() *Vocabulary {
	return NewVocabulary(defaultWords)
}

var defaultWords = []string{
	// general
	"the", "a", "an", "and", "or", "but", "not", "is", "are", "was",
	"were", "be", "been", "have", "has", "had", "do", "does", "did", "will",
	"would", "can", "could", "should", "may", "might", "must", "this", "that", "these",
	"those", "it", "its", "they", "them", "we", "you", "he", "she", "i",
	"of", "in", "on", "at", "to", "for", "with", "from", "by", "about",
	"into", "over", "under", "after", "before", "between", "through", "during", "without", "within",
	"what", "which", "who", "when", "where", "why", "how", "all", "any", "some",
	"more", "most", "less", "many", "much", "few", "new", "old", "first", "last",
	"good", "bad", "best", "high", "low", "large", "small", "long", "short", "big",
	"quick", "slow", "fast", "brown", "red", "blue", "green", "black", "white", "lazy",
	"fox", "dog", "cat", "jumps", "run", "walk", "make", "take", "use", "get",
	"give", "find", "know", "think", "see", "look", "want", "need", "work", "help",
	"time", "year", "day", "week", "month", "today", "people", "person", "man", "woman",
	"child", "world", "life", "way", "thing", "place", "part", "case", "point", "fact",
	"group", "number", "problem", "question", "answer", "example", "idea", "information", "result", "change",
	// business and finance
	"business", "company", "market", "price", "cost", "money", "sales", "revenue", "profit", "loss",
	"customer", "product", "service", "strategy", "growth", "investment", "stock", "trade", "trading", "bank",
	"finance", "financial", "budget", "tax", "income", "payment", "account", "management", "manager", "team",
	"marketing", "brand", "plan", "goal", "risk", "value", "economy", "economic", "industry", "startup",
	// legal
	"legal", "law", "contract", "agreement", "court", "judge", "rights", "policy", "regulation", "compliance",
	"liability", "clause", "party", "license", "privacy", "terms", "dispute", "lawyer", "case", "claim",
	// technology
	"data", "software", "system", "code", "program", "computer", "network", "server", "database", "security",
	"application", "app", "web", "internet", "user", "api", "cloud", "model", "algorithm", "machine",
	"learning", "ai", "search", "query", "document", "text", "file", "storage", "memory", "performance",
	"test", "error", "bug", "design", "interface", "platform", "device", "digital", "online", "email",
	// health and science
	"health", "medical", "doctor", "patient", "disease", "treatment", "care", "food", "diet", "exercise",
	"fitness", "sleep", "mental", "body", "research", "study", "science", "energy", "water", "climate",
	// education and media
	"school", "student", "teacher", "education", "course", "class", "book", "article", "news", "story",
	"content", "video", "music", "image", "social", "media", "post", "writing", "language", "word",
	// travel and home
	"travel", "trip", "hotel", "flight", "city", "country", "home", "house", "family", "car",
	"road", "weather", "event", "game", "sport", "team", "food", "restaurant", "shop", "store",
}
