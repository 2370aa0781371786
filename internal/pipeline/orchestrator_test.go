package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/legal-lab/internal/analysis"
	"github.com/JaimeStill/legal-lab/internal/cases"
	"github.com/JaimeStill/legal-lab/internal/credentials"
	"github.com/JaimeStill/legal-lab/internal/normalize"
	"github.com/JaimeStill/legal-lab/pkg/logging"
	"github.com/JaimeStill/legal-lab/pkg/pagination"
)

const testMaxSize = 25 * 1024 * 1024

// memoryStore is a cases.Store that records inserts and can be forced to fail.
type memoryStore struct {
	mu      sync.Mutex
	records []cases.Record
	err     error
}

func (m *memoryStore) Insert(_ context.Context, rec *cases.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	rec.CreatedAt = time.Now()
	m.records = append(m.records, *rec)
	return nil
}

func (m *memoryStore) List(context.Context, string, pagination.PageRequest) (*pagination.PageResult[cases.Record], error) {
	return nil, errors.New("not implemented")
}

func (m *memoryStore) Find(context.Context, string, uuid.UUID) (*cases.Record, error) {
	return nil, cases.ErrNotFound
}

func (m *memoryStore) All(context.Context, string) ([]cases.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]cases.Record(nil), m.records...), nil
}

func (m *memoryStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// fakeClient classifies text payloads by keyword and counts calls.
type fakeClient struct {
	calls    atomic.Int32
	payloads []normalize.Payload
	mu       sync.Mutex
	fn       func(normalize.Payload, string) (analysis.Result, error)
}

func (f *fakeClient) Analyze(_ context.Context, p normalize.Payload, credential string) (analysis.Result, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.payloads = append(f.payloads, p)
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(p, credential)
	}
	return keywordAnalysis(p)
}

func keywordAnalysis(p normalize.Payload) (analysis.Result, error) {
	if strings.Contains(p.Content, "Agreement") {
		return analysis.Validate([]byte(`{
			"isLegalDocument": true,
			"documentType": "Service Agreement",
			"summary": "An agreement between two parties.",
			"keyPoints": ["Term of 12 months"],
			"parties": ["Acme Corp", "Beta LLC", "Acme Corp"]
		}`))
	}
	return analysis.Validate([]byte(`{"isLegalDocument": false, "errorMessage": "Please upload a legal document."}`))
}

type harness struct {
	orch     *Orchestrator
	client   *fakeClient
	store    *memoryStore
	outcomes chan cases.Outcome
}

func newHarness(t *testing.T, maxSize int64) *harness {
	t.Helper()
	h := &harness{
		client:   &fakeClient{},
		store:    &memoryStore{},
		outcomes: make(chan cases.Outcome, 8),
	}
	h.orch = New(Deps{
		Normalizer: normalize.New(maxSize),
		Client:     h.client,
		Persister:  cases.NewAdapter(h.store, logging.Discard()),
		Observer:   func(o cases.Outcome) { h.outcomes <- o },
		Logger:     logging.Discard(),
	})
	return h
}

func textFile(name, content string) normalize.File {
	return normalize.File{
		Name:      name,
		MediaType: "text/plain",
		Size:      int64(len(content)),
		Content:   strings.NewReader(content),
	}
}

type failingReader struct{ read atomic.Bool }

func (r *failingReader) Read([]byte) (int, error) {
	r.read.Store(true)
	return 0, io.ErrUnexpectedEOF
}

func emptyDocx(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:drawing/></w:r></w:p></w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestScenario_LegalTextPersistsOnce(t *testing.T) {
	h := newHarness(t, testMaxSize)

	out, err := h.orch.Submit(context.Background(), Request{
		File:     textFile("contract.txt", "This Agreement is made between Acme Corp and Beta LLC."),
		Explicit: "key-123",
		UserID:   "user-1",
	})
	require.NoError(t, err)

	assert.Equal(t, StateComplete, out.State)
	assert.Equal(t, VerdictSuccess, out.Verdict)
	require.NotNil(t, out.Result)
	assert.True(t, out.Result.IsLegalDocument)
	assert.NotEmpty(t, out.Result.Summary)
	assert.Equal(t, []string{"Acme Corp", "Beta LLC"}, out.Result.Parties)

	h.orch.Wait()
	assert.Equal(t, 1, h.store.count())
	assert.IsType(t, cases.Persisted{}, <-h.outcomes)

	rec := h.store.records[0]
	assert.Equal(t, "contract.txt", rec.FileName)
	assert.Equal(t, cases.StatusPendingReview, rec.Status)
}

func TestScenario_FillerTextRejected(t *testing.T) {
	h := newHarness(t, testMaxSize)

	out, err := h.orch.Submit(context.Background(), Request{
		File:   textFile("filler.txt", "lorem ipsum dolor sit amet"),
		Saved:  "saved-key",
		UserID: "user-1",
	})
	require.NoError(t, err)

	assert.Equal(t, StateComplete, out.State)
	assert.Equal(t, VerdictRejected, out.Verdict)
	require.NotNil(t, out.Result)
	assert.False(t, out.Result.IsLegalDocument)
	assert.NotEmpty(t, out.Result.ErrorMessage)

	h.orch.Wait()
	assert.Zero(t, h.store.count())
}

func TestScenario_ImageWithoutCredential(t *testing.T) {
	h := newHarness(t, testMaxSize)

	img := []byte("\x89PNG\r\n\x1a\n fake image bytes")
	out, err := h.orch.Submit(context.Background(), Request{
		File: normalize.File{
			Name:      "scan.png",
			MediaType: "image/png",
			Size:      int64(len(img)),
			Content:   bytes.NewReader(img),
		},
		Explicit: "  ",
		UserID:   "user-1",
	})

	require.ErrorIs(t, err, credentials.ErrMissingCredential)
	assert.Equal(t, StateFailed, out.State)
	assert.Equal(t, KindMissingCredential, out.Failure.Kind)
	assert.Zero(t, h.client.calls.Load())
}

func TestScenario_OversizedPDF(t *testing.T) {
	h := newHarness(t, testMaxSize)
	reader := &failingReader{}

	out, err := h.orch.Submit(context.Background(), Request{
		File: normalize.File{
			Name:      "big.pdf",
			MediaType: "application/pdf",
			Size:      30 * 1024 * 1024,
			Content:   reader,
		},
		Explicit: "key",
	})

	require.ErrorIs(t, err, normalize.ErrSizeLimitExceeded)
	assert.Equal(t, StateFailed, out.State)
	assert.Equal(t, KindSizeLimitExceeded, out.Failure.Kind)
	assert.False(t, reader.read.Load(), "content must not be read")
	assert.Zero(t, h.client.calls.Load())
}

func TestScenario_EmptyDocxStillAnalyzed(t *testing.T) {
	h := newHarness(t, testMaxSize)
	data := emptyDocx(t)

	out, err := h.orch.Submit(context.Background(), Request{
		File: normalize.File{
			Name:      "scan.docx",
			MediaType: "application/octet-stream",
			Size:      int64(len(data)),
			Content:   bytes.NewReader(data),
		},
		Explicit: "key",
	})
	require.NoError(t, err)

	require.EqualValues(t, 1, h.client.calls.Load())
	assert.Equal(t, "", h.client.payloads[0].Content)
	assert.Equal(t, normalize.EncodingText, h.client.payloads[0].Encoding)
	assert.Equal(t, VerdictRejected, out.Verdict)
}

func TestScenario_NetworkErrorThenRetry(t *testing.T) {
	h := newHarness(t, testMaxSize)
	down := true
	h.client.fn = func(p normalize.Payload, _ string) (analysis.Result, error) {
		if down {
			return analysis.Result{}, fmt.Errorf("%w: dial tcp: connection refused", analysis.ErrAIInvocation)
		}
		return keywordAnalysis(p)
	}

	req := func() Request {
		return Request{
			File:     textFile("contract.txt", "This Agreement is made between..."),
			Explicit: "key",
			UserID:   "user-1",
		}
	}

	out, err := h.orch.Submit(context.Background(), req())
	require.ErrorIs(t, err, analysis.ErrAIInvocation)
	assert.Equal(t, StateFailed, out.State)
	assert.Equal(t, KindAIInvocation, out.Failure.Kind)
	assert.Contains(t, out.Failure.Message, "connection refused")

	down = false
	out, err = h.orch.Submit(context.Background(), req())
	require.NoError(t, err)
	assert.Equal(t, VerdictSuccess, out.Verdict)
	assert.EqualValues(t, 2, h.client.calls.Load())

	h.orch.Wait()
	assert.Equal(t, 1, h.store.count())
}

func TestSubmit_SizeBoundary(t *testing.T) {
	const limit = 16
	h := newHarness(t, limit)

	out, err := h.orch.Submit(context.Background(), Request{
		File:     textFile("exact.txt", strings.Repeat("a", limit)),
		Explicit: "key",
	})
	require.NoError(t, err)
	assert.Equal(t, StateComplete, out.State)

	out, err = h.orch.Submit(context.Background(), Request{
		File:     textFile("over.txt", strings.Repeat("a", limit+1)),
		Explicit: "key",
	})
	require.ErrorIs(t, err, normalize.ErrSizeLimitExceeded)
	assert.Equal(t, StateFailed, out.State)
	assert.EqualValues(t, 1, h.client.calls.Load())
}

func TestSubmit_UnsupportedFormat(t *testing.T) {
	h := newHarness(t, testMaxSize)

	out, err := h.orch.Submit(context.Background(), Request{
		File: normalize.File{
			Name:      "sheet.csv",
			MediaType: "text/csv",
			Size:      3,
			Content:   strings.NewReader("a,b"),
		},
		Explicit: "key",
	})

	require.ErrorIs(t, err, normalize.ErrUnsupportedFormat)
	assert.Equal(t, KindUnsupportedFormat, out.Failure.Kind)
	assert.Zero(t, h.client.calls.Load())
}

func TestSubmit_SingleFlight(t *testing.T) {
	h := newHarness(t, testMaxSize)
	release := make(chan struct{})
	var inFlight, maxInFlight atomic.Int32
	h.client.fn = func(p normalize.Payload, _ string) (analysis.Result, error) {
		n := inFlight.Add(1)
		if n > maxInFlight.Load() {
			maxInFlight.Store(n)
		}
		<-release
		inFlight.Add(-1)
		return keywordAnalysis(p)
	}

	done := make(chan Outcome)
	go func() {
		out, _ := h.orch.Submit(context.Background(), Request{
			File:     textFile("a.txt", "This Agreement"),
			Explicit: "key",
		})
		done <- out
	}()

	require.Eventually(t, func() bool {
		return h.orch.Snapshot().State == StateAnalyzing
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, ProgressAnalyzing, h.orch.Snapshot().Progress)

	_, err := h.orch.Submit(context.Background(), Request{
		File:     textFile("b.txt", "This Agreement"),
		Explicit: "key",
	})
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, h.orch.Reset(), ErrBusy)

	close(release)
	out := <-done
	assert.Equal(t, StateComplete, out.State)
	assert.EqualValues(t, 1, maxInFlight.Load())
	assert.EqualValues(t, 1, h.client.calls.Load())
}

func TestSubmit_MalformedResponse(t *testing.T) {
	h := newHarness(t, testMaxSize)
	h.client.fn = func(normalize.Payload, string) (analysis.Result, error) {
		return analysis.Validate([]byte(`{"summary": "no discriminator"}`))
	}

	out, err := h.orch.Submit(context.Background(), Request{
		File:     textFile("a.txt", "This Agreement"),
		Explicit: "key",
	})

	require.ErrorIs(t, err, analysis.ErrMalformedResponse)
	assert.Equal(t, KindMalformedResponse, out.Failure.Kind)
	assert.Nil(t, out.Result)
}

func TestSubmit_UncheckedClientResult(t *testing.T) {
	h := newHarness(t, testMaxSize)
	h.client.fn = func(normalize.Payload, string) (analysis.Result, error) {
		return analysis.Result{IsLegalDocument: true}, nil
	}

	out, err := h.orch.Submit(context.Background(), Request{
		File:     textFile("a.txt", "This Agreement"),
		Explicit: "key",
		UserID:   "u1",
	})

	require.ErrorIs(t, err, analysis.ErrMalformedResponse)
	assert.Equal(t, StateFailed, out.State)
	assert.Nil(t, out.Result)
	assert.Zero(t, h.store.count())
}

func TestSubmit_NonLegalIdempotence(t *testing.T) {
	h := newHarness(t, testMaxSize)

	for range 2 {
		out, err := h.orch.Submit(context.Background(), Request{
			File:   textFile("filler.txt", "lorem ipsum"),
			Saved:  "key",
			UserID: "user-1",
		})
		require.NoError(t, err)
		assert.Equal(t, VerdictRejected, out.Verdict)
	}

	h.orch.Wait()
	assert.Zero(t, h.store.count())
	assert.EqualValues(t, 2, h.client.calls.Load())
}

func TestSubmit_PersistenceIsolation(t *testing.T) {
	h := newHarness(t, testMaxSize)
	h.store.err = errors.New("permission denied")

	out, err := h.orch.Submit(context.Background(), Request{
		File:     textFile("contract.txt", "This Agreement is made between..."),
		Explicit: "key",
		UserID:   "user-1",
	})
	require.NoError(t, err)
	h.orch.Wait()

	assert.Equal(t, VerdictSuccess, out.Verdict)
	assert.Equal(t, out, h.orch.Snapshot())

	warn, ok := (<-h.outcomes).(cases.PersistWarning)
	require.True(t, ok)
	assert.Equal(t, cases.ReasonStoreFailed, warn.Reason)
}

func TestSubmit_AnonymousSkipsPersistence(t *testing.T) {
	h := newHarness(t, testMaxSize)

	_, err := h.orch.Submit(context.Background(), Request{
		File:     textFile("contract.txt", "This Agreement"),
		Explicit: "key",
	})
	require.NoError(t, err)
	h.orch.Wait()

	assert.Zero(t, h.store.count())
	warn, ok := (<-h.outcomes).(cases.PersistWarning)
	require.True(t, ok)
	assert.Equal(t, cases.ReasonNoIdentity, warn.Reason)
}

func TestSubmit_CanceledContextStillCompletes(t *testing.T) {
	h := newHarness(t, testMaxSize)
	h.client.fn = func(p normalize.Payload, _ string) (analysis.Result, error) {
		return keywordAnalysis(p)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := h.orch.Submit(ctx, Request{
		File:     textFile("contract.txt", "This Agreement"),
		Explicit: "key",
	})
	require.NoError(t, err)
	assert.Equal(t, StateComplete, out.State)
}

func TestReset(t *testing.T) {
	h := newHarness(t, testMaxSize)

	_, err := h.orch.Submit(context.Background(), Request{
		File:     textFile("contract.txt", "This Agreement"),
		Explicit: "key",
	})
	require.NoError(t, err)
	require.Equal(t, StateComplete, h.orch.Snapshot().State)

	require.NoError(t, h.orch.Reset())
	snap := h.orch.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Nil(t, snap.Result)
	assert.Empty(t, snap.FileName)
}

func TestKindOfAndStatus(t *testing.T) {
	tests := []struct {
		err    error
		kind   Kind
		status int
	}{
		{normalize.ErrUnsupportedFormat, KindUnsupportedFormat, 415},
		{normalize.ErrSizeLimitExceeded, KindSizeLimitExceeded, 413},
		{normalize.ErrReadFailed, KindNormalizationFailed, 400},
		{credentials.ErrMissingCredential, KindMissingCredential, 428},
		{analysis.ErrAIInvocation, KindAIInvocation, 502},
		{analysis.ErrMalformedResponse, KindMalformedResponse, 502},
		{ErrBusy, KindBusy, 409},
		{errors.New("boom"), KindInternal, 500},
	}

	for _, tt := range tests {
		wrapped := fmt.Errorf("context: %w", tt.err)
		assert.Equal(t, tt.kind, KindOf(wrapped), tt.err.Error())
		assert.Equal(t, tt.status, MapHTTPStatus(wrapped), tt.err.Error())
	}
}

func TestNewFailureFallback(t *testing.T) {
	assert.Equal(t, FallbackMessage, newFailure(errors.New("")).Message)
	assert.Equal(t, "boom", newFailure(errors.New("boom")).Message)
}
