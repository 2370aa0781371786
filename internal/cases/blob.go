package cases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/JaimeStill/legal-lab/internal/storage"
	"github.com/JaimeStill/legal-lab/pkg/pagination"
)

// KeyPrefix is the root of the document-per-record collection in blob storage.
const KeyPrefix = "legal-cases"

type blobStore struct {
	blobs      storage.System
	pagination pagination.Config
	now        func() time.Time
}

// NewBlobStore creates a Store that keeps one JSON document per record at
// legal-cases/<userId>/<id>.json.
func NewBlobStore(blobs storage.System, cfg pagination.Config) Store {
	return &blobStore{blobs: blobs, pagination: cfg, now: time.Now}
}

func userPrefix(userID string) string {
	return KeyPrefix + "/" + url.PathEscape(userID) + "/"
}

func recordKey(userID string, id uuid.UUID) string {
	return userPrefix(userID) + id.String() + ".json"
}

func (s *blobStore) Insert(ctx context.Context, rec *Record) error {
	key := recordKey(rec.UserID, rec.ID)

	exists, err := s.blobs.Validate(ctx, key)
	if err != nil {
		return fmt.Errorf("check case record: %w", err)
	}
	if exists {
		return ErrDuplicate
	}

	rec.CreatedAt = s.now().UTC()
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode case record: %w", err)
	}

	if err := s.blobs.Store(ctx, key, data); err != nil {
		return fmt.Errorf("store case record: %w", err)
	}
	return nil
}

func (s *blobStore) List(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResult[Record], error) {
	page.Normalize(s.pagination)

	records, err := s.All(ctx, userID)
	if err != nil {
		return nil, err
	}

	if page.Search != nil && *page.Search != "" {
		term := strings.ToLower(*page.Search)
		records = lo.Filter(records, func(r Record, _ int) bool {
			return strings.Contains(strings.ToLower(r.FileName), term) ||
				strings.Contains(strings.ToLower(r.DocumentType), term) ||
				strings.Contains(strings.ToLower(r.Summary), term)
		})
	}

	total := len(records)
	start := min(page.Offset(), total)
	end := min(start+page.PageSize, total)

	result := pagination.NewPageResult(records[start:end], total, page.Page, page.PageSize)
	return &result, nil
}

func (s *blobStore) Find(ctx context.Context, userID string, id uuid.UUID) (*Record, error) {
	data, err := s.blobs.Retrieve(ctx, recordKey(userID, id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("retrieve case record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode case record: %w", err)
	}
	return &rec, nil
}

func (s *blobStore) All(ctx context.Context, userID string) ([]Record, error) {
	keys, err := s.blobs.List(ctx, userPrefix(userID))
	if err != nil {
		return nil, fmt.Errorf("list case records: %w", err)
	}

	records := make([]Record, 0, len(keys))
	for _, key := range keys {
		if !strings.HasSuffix(key, ".json") {
			continue
		}
		data, err := s.blobs.Retrieve(ctx, key)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("retrieve %s: %w", key, err)
		}

		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}
