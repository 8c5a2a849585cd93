package search

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
)

const profileIndex = "profiles"

// ProfileDocument is the roster search projection of a customer profile.
type ProfileDocument struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	IDNo      int64  `json:"id_no"`
}

// ProfileSearcher indexes customer profiles and resolves roster search
// queries to profile ids. Implementations are optional collaborators: a nil
// searcher makes the roster fall back to a SQL pattern match.
type ProfileSearcher interface {
	IndexProfile(doc ProfileDocument) error
	DeleteProfile(id string) error
	Search(query string, limit int) ([]uuid.UUID, error)
}

type meiliProfileSearcher struct {
	client meilisearch.ServiceManager
}

func NewMeiliProfileSearcher(client meilisearch.ServiceManager) ProfileSearcher {
	s := &meiliProfileSearcher{client: client}
	s.initIndex()
	return s
}

func (s *meiliProfileSearcher) initIndex() {
	searchableAttrs := []string{"first_name", "last_name", "id_no"}
	if _, err := s.client.Index(profileIndex).UpdateSearchableAttributes(&searchableAttrs); err != nil {
		log.Printf("failed to update profile searchable attributes: %v", err)
	}
}

func (s *meiliProfileSearcher) IndexProfile(doc ProfileDocument) error {
	_, err := s.client.Index(profileIndex).AddDocuments([]ProfileDocument{doc}, strPtr("id"))
	return err
}

func (s *meiliProfileSearcher) DeleteProfile(id string) error {
	_, err := s.client.Index(profileIndex).DeleteDocument(id)
	return err
}

func (s *meiliProfileSearcher) Search(query string, limit int) ([]uuid.UUID, error) {
	resp, err := s.client.Index(profileIndex).Search(query, &meilisearch.SearchRequest{
		Limit: int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("profile search failed: %w", err)
	}

	raw, err := json.Marshal(resp.Hits)
	if err != nil {
		return nil, err
	}

	var docs []ProfileDocument
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(docs))
	for _, doc := range docs {
		id, err := uuid.Parse(doc.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	return ids, nil
}

func strPtr(s string) *string {
	return &s
}
