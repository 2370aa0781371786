package cases

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/legal-lab/pkg/pagination"
	"github.com/JaimeStill/legal-lab/pkg/query"
	"github.com/JaimeStill/legal-lab/pkg/repository"
)

var projection = query.NewProjectionMap("public", "legal_cases", "c").
	Project("id", "id").
	Project("user_id", "userId").
	Project("file_name", "fileName").
	Project("status", "status").
	Project("date", "date").
	Project("is_legal_document", "isLegalDocument").
	Project("document_type", "documentType").
	Project("summary", "summary").
	Project("key_points", "keyPoints").
	Project("risks", "risks").
	Project("actions", "actions").
	Project("parties", "parties").
	Project("dates", "dates").
	Project("created_at", "createdAt")

const defaultSort = "createdAt"

// stringList stores a []string as a JSONB array.
type stringList []string

func (s stringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(s))
	return string(data), err
}

func (s *stringList) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*s = stringList{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan string list: unsupported type %T", src)
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*s = nonNil(out)
	return nil
}

type pgStore struct {
	db         *sql.DB
	pagination pagination.Config
}

// NewPostgresStore creates a Store over the legal_cases table.
func NewPostgresStore(db *sql.DB, cfg pagination.Config) Store {
	return &pgStore{db: db, pagination: cfg}
}

func (s *pgStore) Insert(ctx context.Context, rec *Record) error {
	q := `
		INSERT INTO legal_cases (
			id, user_id, file_name, status, date, is_legal_document, document_type,
			summary, key_points, risks, actions, parties, dates
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at`

	args := []any{
		rec.ID, rec.UserID, rec.FileName, rec.Status, rec.Date, rec.IsLegalDocument, rec.DocumentType,
		rec.Summary, stringList(rec.KeyPoints), stringList(rec.Risks), stringList(rec.Actions),
		stringList(rec.Parties), stringList(rec.Dates),
	}

	createdAt, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (time.Time, error) {
		return repository.QueryOne(ctx, tx, q, args, func(sc repository.Scanner) (time.Time, error) {
			var t time.Time
			err := sc.Scan(&t)
			return t, err
		})
	})
	if err != nil {
		return fmt.Errorf("insert case record: %w", repository.MapError(err, ErrNotFound, ErrDuplicate))
	}

	rec.CreatedAt = createdAt
	return nil
}

func (s *pgStore) List(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResult[Record], error) {
	page.Normalize(s.pagination)

	qb := query.NewBuilder(projection, defaultSort).
		WhereEquals("userId", userID).
		WhereSearch(page.Search, "fileName", "documentType", "summary").
		OrderBy("", true).
		OrderByFields(page.Sort)

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.QueryOne(ctx, s.db, countSQL, countArgs, func(sc repository.Scanner) (int, error) {
		var n int
		err := sc.Scan(&n)
		return n, err
	})
	if err != nil {
		return nil, fmt.Errorf("count case records: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	records, err := repository.QueryMany(ctx, s.db, pageSQL, pageArgs, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("query case records: %w", err)
	}

	result := pagination.NewPageResult(records, total, page.Page, page.PageSize)
	return &result, nil
}

func (s *pgStore) Find(ctx context.Context, userID string, id uuid.UUID) (*Record, error) {
	q, args := query.NewBuilder(projection, defaultSort).BuildSingle("id", id)

	rec, err := repository.QueryOne(ctx, s.db, q, args, scanRecord)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	if rec.UserID != userID {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (s *pgStore) All(ctx context.Context, userID string) ([]Record, error) {
	q, args := query.NewBuilder(projection, defaultSort).
		WhereEquals("userId", userID).
		OrderBy("", true).
		BuildSelect()

	records, err := repository.QueryMany(ctx, s.db, q, args, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("query case records: %w", err)
	}
	return records, nil
}

func scanRecord(sc repository.Scanner) (Record, error) {
	var (
		r                                         Record
		date                                      time.Time
		keyPoints, risks, actions, parties, dates stringList
	)

	err := sc.Scan(
		&r.ID, &r.UserID, &r.FileName, &r.Status, &date, &r.IsLegalDocument, &r.DocumentType,
		&r.Summary, &keyPoints, &risks, &actions, &parties, &dates, &r.CreatedAt,
	)
	if err != nil {
		return Record{}, err
	}

	r.Date = date.Format(DateLayout)
	r.KeyPoints, r.Risks, r.Actions = keyPoints, risks, actions
	r.Parties, r.Dates = parties, dates
	return r, nil
}
