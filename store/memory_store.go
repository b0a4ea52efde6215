package store

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"balades-api/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps balades in insertion order in process memory. Filters are
// evaluated against the bson encoding of each document so field names and
// paths behave as they do against MongoDB. Safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	docs []bson.M
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func toDoc(b *models.Balade) (bson.M, error) {
	raw, err := bson.Marshal(b)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func fromDoc(doc bson.M) (*models.Balade, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var b models.Balade
	if err := bson.Unmarshal(raw, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *MemoryStore) indexOf(oid primitive.ObjectID) int {
	for i, doc := range s.docs {
		if doc["_id"] == oid {
			return i
		}
	}
	return -1
}

func (s *MemoryStore) Insert(_ context.Context, b *models.Balade) (*models.Balade, error) {
	if b.NomPOI == "" {
		return nil, ErrNameRequired
	}
	cp := *b
	cp.ID = primitive.NewObjectID()
	cp.Normalize()
	doc, err := toDoc(&cp)
	if err != nil {
		return nil, fmt.Errorf("encode balade: %w", err)
	}

	s.mu.Lock()
	s.docs = append(s.docs, doc)
	s.mu.Unlock()
	return fromDoc(doc)
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (*models.Balade, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(oid)
	if i < 0 {
		return nil, ErrNotFound
	}
	return fromDoc(s.docs[i])
}

func (s *MemoryStore) matching(f Filter) ([]bson.M, error) {
	m, err := compile(f)
	if err != nil {
		return nil, err
	}
	var out []bson.M
	for _, doc := range s.docs {
		if m.match(doc) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (s *MemoryStore) Find(_ context.Context, f Filter, opts FindOptions) ([]models.Balade, error) {
	s.mu.RLock()
	docs, err := s.matching(f)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	if opts.SortAsc != "" {
		sort.SliceStable(docs, func(i, j int) bool {
			return sortKey(docs[i], opts.SortAsc) < sortKey(docs[j], opts.SortAsc)
		})
	}

	balades := make([]models.Balade, 0, len(docs))
	for _, doc := range docs {
		b, err := fromDoc(doc)
		if err != nil {
			return nil, fmt.Errorf("decode balade: %w", err)
		}
		balades = append(balades, *b)
	}
	return balades, nil
}

func (s *MemoryStore) Count(_ context.Context, f Filter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs, err := s.matching(f)
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

// set applies fields to doc and round-trips it so values take their stored form.
func set(doc bson.M, fields Fields) (bson.M, error) {
	next := bson.M{}
	for k, v := range doc {
		next[k] = v
	}
	for k, v := range fields {
		next[k] = v
	}
	b, err := fromDoc(next)
	if err != nil {
		return nil, err
	}
	return toDoc(b)
}

func (s *MemoryStore) UpdateByID(_ context.Context, id string, fields Fields) (*models.Balade, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(oid)
	if i < 0 {
		return nil, ErrNotFound
	}
	doc, err := set(s.docs[i], fields)
	if err != nil {
		return nil, fmt.Errorf("update balade %s: %w", id, err)
	}
	s.docs[i] = doc
	return fromDoc(doc)
}

func (s *MemoryStore) UpdateMany(_ context.Context, f Filter, fields Fields) (int64, error) {
	m, err := compile(f)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched int64
	for i, doc := range s.docs {
		if !m.match(doc) {
			continue
		}
		next, err := set(doc, fields)
		if err != nil {
			return matched, fmt.Errorf("update balades: %w", err)
		}
		s.docs[i] = next
		matched++
	}
	return matched, nil
}

func (s *MemoryStore) PushUnique(_ context.Context, id, field, value string) (*models.Balade, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(oid)
	if i < 0 {
		return nil, ErrNotFound
	}

	var arr primitive.A
	switch v := s.docs[i][field].(type) {
	case primitive.A:
		arr = v
	case nil:
	default:
		return nil, fmt.Errorf("push %s on balade %s: field is not an array", field, id)
	}
	for _, el := range arr {
		if el == value {
			return nil, ErrAlreadyPresent
		}
	}
	grown := make(primitive.A, 0, len(arr)+1)
	grown = append(grown, arr...)
	grown = append(grown, value)

	doc, err := set(s.docs[i], Fields{field: grown})
	if err != nil {
		return nil, fmt.Errorf("push %s on balade %s: %w", field, id, err)
	}
	s.docs[i] = doc
	return fromDoc(doc)
}

func (s *MemoryStore) DeleteByID(_ context.Context, id string) (*models.Balade, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(oid)
	if i < 0 {
		return nil, ErrNotFound
	}
	doc := s.docs[i]
	s.docs = append(s.docs[:i], s.docs[i+1:]...)
	return fromDoc(doc)
}

func (s *MemoryStore) Distinct(_ context.Context, field string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[string]struct{}{}
	for _, doc := range s.docs {
		v, ok := lookup(doc, field)
		if !ok {
			continue
		}
		switch val := v.(type) {
		case string:
			seen[val] = struct{}{}
		case primitive.A:
			for _, el := range val {
				if str, ok := el.(string); ok {
					seen[str] = struct{}{}
				}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryStore) CountBySubstring(_ context.Context, field string, start, length int) ([]models.ArrondissementCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := map[string]int{}
	for _, doc := range s.docs {
		str, _ := doc[field].(string)
		key, err := substrBytes(str, start, length)
		if err != nil {
			return nil, err
		}
		counts[key]++
	}
	groups := make([]models.ArrondissementCount, 0, len(counts))
	for k, n := range counts {
		groups = append(groups, models.ArrondissementCount{ID: k, Count: n})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups, nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

func (s *MemoryStore) Seed(ctx context.Context, balades []models.Balade) (int, error) {
	s.mu.RLock()
	empty := len(s.docs) == 0
	s.mu.RUnlock()
	if !empty {
		return 0, nil
	}
	for i := range balades {
		if _, err := s.Insert(ctx, &balades[i]); err != nil {
			return i, err
		}
	}
	return len(balades), nil
}

// substrBytes follows MongoDB's $substrBytes, which rejects a range that
// starts or ends inside a multi-byte character.
func substrBytes(s string, start, length int) (string, error) {
	if start >= len(s) {
		return "", nil
	}
	if !utf8.RuneStart(s[start]) {
		return "", fmt.Errorf("$substrBytes: starting index %d of %q is a UTF-8 continuation byte", start, s)
	}
	end := start + length
	if end >= len(s) {
		return s[start:], nil
	}
	if !utf8.RuneStart(s[end]) {
		return "", fmt.Errorf("$substrBytes: ending index %d of %q is in the middle of a UTF-8 character", end, s)
	}
	return s[start:end], nil
}

func sortKey(doc bson.M, field string) string {
	v, _ := lookup(doc, field)
	if str, ok := v.(string); ok {
		return str
	}
	return ""
}

// lookup resolves a dotted path, treating numeric segments as array indexes.
func lookup(doc bson.M, path string) (any, bool) {
	var cur any = doc
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case bson.M:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case primitive.D:
			m := node.Map()
			v, ok := m[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case primitive.A:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

type compiledCond struct {
	Condition
	re *regexp.Regexp
}

type matcher struct {
	all []compiledCond
	any []compiledCond
}

func compileConds(conds []Condition) ([]compiledCond, error) {
	out := make([]compiledCond, 0, len(conds))
	for _, c := range conds {
		cc := compiledCond{Condition: c}
		if c.Op == OpRegex {
			pattern := c.Pattern
			if c.CaseInsensitive {
				pattern = "(?i)" + pattern
			}
			re, err := regexp.Compile(pattern)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", c.Pattern, err)
			}
			cc.re = re
		}
		out = append(out, cc)
	}
	return out, nil
}

func compile(f Filter) (*matcher, error) {
	all, err := compileConds(f.All)
	if err != nil {
		return nil, err
	}
	anyOf, err := compileConds(f.Any)
	if err != nil {
		return nil, err
	}
	return &matcher{all: all, any: anyOf}, nil
}

func (m *matcher) match(doc bson.M) bool {
	for _, c := range m.all {
		if !c.match(doc) {
			return false
		}
	}
	if len(m.any) == 0 {
		return true
	}
	for _, c := range m.any {
		if c.match(doc) {
			return true
		}
	}
	return false
}

func (c compiledCond) match(doc bson.M) bool {
	v, ok := lookup(doc, c.Field)
	switch c.Op {
	case OpExists:
		return ok
	case OpNotNull:
		return ok && v != nil
	case OpRegex:
		switch val := v.(type) {
		case string:
			return c.re.MatchString(val)
		case primitive.A:
			for _, el := range val {
				if str, ok := el.(string); ok && c.re.MatchString(str) {
					return true
				}
			}
		}
	}
	return false
}
