package labelsvc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"wols/internal/archive"
	"wols/internal/labelsink"
	"wols/pkg/label"
	"wols/pkg/wols"

	"github.com/google/uuid"
)

func testSpecimen() wols.Specimen {
	return wols.Specimen{
		Context: wols.ContextIRI,
		DocType: wols.DocumentType,
		ID:      "wols:abc123",
		Version: wols.CurrentVersion,
		Type:    wols.TypeCulture,
		Species: "Pleurotus ostreatus",
		Stage:   wols.StageColonized,
		Batch:   "B-7",
	}
}

func newTestService(t *testing.T, opts ...Option) (*Service, labelsink.Store, archive.Store) {
	t.Helper()
	sink := labelsink.NewMemory()
	arch := archive.NewMemory()
	svc, err := New(sink, arch, opts...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, sink, arch
}

type failRecordArchive struct {
	archive.Store
	err error
}

func (a failRecordArchive) Record(context.Context, archive.Issuance) error { return a.err }

type failDeleteSink struct {
	labelsink.Store
	err error
}

func (s failDeleteSink) Delete(context.Context, string) (bool, error) { return false, s.err }

type captureLogger struct {
	warns  []string
	errors []string
}

func (l *captureLogger) Debug(string, ...any)       {}
func (l *captureLogger) Info(string, ...any)        {}
func (l *captureLogger) Warn(msg string, _ ...any)  { l.warns = append(l.warns, msg) }
func (l *captureLogger) Error(msg string, _ ...any) { l.errors = append(l.errors, msg) }

func (l *captureLogger) hasWarn(msg string) bool {
	for _, w := range l.warns {
		if w == msg {
			return true
		}
	}
	return false
}

func TestNewRequiresDependencies(t *testing.T) {
	if _, err := New(nil, archive.NewMemory()); err == nil || !strings.Contains(err.Error(), "sink is required") {
		t.Fatalf("nil sink error = %v", err)
	}
	if _, err := New(labelsink.NewMemory(), nil); err == nil || !strings.Contains(err.Error(), "archive is required") {
		t.Fatalf("nil archive error = %v", err)
	}
}

func TestIssueStoresArtifactAndRecordsIssuance(t *testing.T) {
	ctx := context.Background()
	svc, sink, arch := newTestService(t)

	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	id := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	svc.now = func() time.Time { return at }
	svc.newID = func() uuid.UUID { return id }

	spec := testSpecimen()
	issued, err := svc.Issue(ctx, spec, label.Options{})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	wantKey := fmt.Sprintf("labels/abc123/%s.png", id)
	if issued.Artifact.Key != wantKey {
		t.Fatalf("artifact key = %q, want %q", issued.Artifact.Key, wantKey)
	}
	if issued.Artifact.ContentType != "image/png" {
		t.Fatalf("artifact content type = %q", issued.Artifact.ContentType)
	}
	if issued.Artifact.Metadata["specimen"] != "wols:abc123" {
		t.Fatalf("artifact metadata = %+v", issued.Artifact.Metadata)
	}
	if want := label.Caption(spec); issued.Caption != want || issued.Caption == "" {
		t.Fatalf("caption = %q, want %q", issued.Caption, want)
	}
	if issued.Issuance.ID != id {
		t.Fatalf("issuance id = %s", issued.Issuance.ID)
	}
	if issued.Issuance.SpecimenID != "wols:abc123" {
		t.Fatalf("issuance specimen = %q", issued.Issuance.SpecimenID)
	}
	if issued.Issuance.Species != "Pleurotus ostreatus" {
		t.Fatalf("issuance species = %q", issued.Issuance.Species)
	}
	if issued.Issuance.Format != "compact" {
		t.Fatalf("issuance format = %q, want %q", issued.Issuance.Format, "compact")
	}
	if !issued.Issuance.IssuedAt.Equal(at) {
		t.Fatalf("issued at = %v, want %v", issued.Issuance.IssuedAt, at)
	}

	info, rc, err := sink.Get(ctx, wantKey)
	if err != nil {
		t.Fatalf("get artifact: %v", err)
	}
	data, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Fatalf("artifact is not a PNG, first bytes %q", data[:min(8, len(data))])
	}
	if info.Size != int64(len(data)) {
		t.Fatalf("artifact size = %d, want %d", info.Size, len(data))
	}

	rows, err := arch.FindBySpecimen(ctx, "wols:abc123")
	if err != nil {
		t.Fatalf("find issuances: %v", err)
	}
	if len(rows) != 1 || rows[0].ArtifactKey != wantKey {
		t.Fatalf("archived issuances = %+v", rows)
	}
}

func TestIssueEmbedsRequestedFormat(t *testing.T) {
	svc, _, _ := newTestService(t)
	issued, err := svc.Issue(context.Background(), testSpecimen(), label.Options{Format: label.FormatEmbedded, Size: 512})
	if err != nil {
		t.Fatalf("issue embedded: %v", err)
	}
	if issued.Issuance.Format != "embedded" {
		t.Fatalf("issuance format = %q, want %q", issued.Issuance.Format, "embedded")
	}
}

func TestIssueRejectsInvalidSpecimen(t *testing.T) {
	ctx := context.Background()
	svc, sink, arch := newTestService(t)

	spec := testSpecimen()
	spec.Species = ""
	_, err := svc.Issue(ctx, spec, label.Options{})
	if err == nil || !strings.Contains(err.Error(), "validate specimen") || !strings.Contains(err.Error(), "species is required") {
		t.Fatalf("invalid specimen error = %v", err)
	}

	if infos, _ := sink.List(ctx, ""); len(infos) != 0 {
		t.Fatalf("sink holds %d artifacts after refused issuance", len(infos))
	}
	if rows, _ := arch.List(ctx, 0); len(rows) != 0 {
		t.Fatalf("archive holds %d issuances after refused issuance", len(rows))
	}
}

func TestIssueRespectsValidateOptions(t *testing.T) {
	spec := testSpecimen()
	spec.ID = "wols:01ARZ3NDEKTSV4RRFFQ69G5FAV"

	svc, _, _ := newTestService(t)
	if _, err := svc.Issue(context.Background(), spec, label.Options{}); err == nil {
		t.Fatal("ULID id accepted under strict id mode")
	}

	svc, _, _ = newTestService(t, WithValidateOptions(wols.ValidateOptions{IDMode: wols.IDModeULID}))
	if _, err := svc.Issue(context.Background(), spec, label.Options{}); err != nil {
		t.Fatalf("ULID id rejected under ulid mode: %v", err)
	}
}

func TestIssueRenderErrorLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	svc, sink, arch := newTestService(t)

	_, err := svc.Issue(ctx, testSpecimen(), label.Options{Level: "Z"})
	if err == nil || !strings.Contains(err.Error(), "render label:") {
		t.Fatalf("render error = %v", err)
	}
	if infos, _ := sink.List(ctx, ""); len(infos) != 0 {
		t.Fatalf("sink holds %d artifacts after render failure", len(infos))
	}
	if rows, _ := arch.List(ctx, 0); len(rows) != 0 {
		t.Fatalf("archive holds %d issuances after render failure", len(rows))
	}
}

func TestIssueSinkCollision(t *testing.T) {
	ctx := context.Background()
	svc, sink, arch := newTestService(t)

	id := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	svc.newID = func() uuid.UUID { return id }
	key := fmt.Sprintf("labels/abc123/%s.png", id)
	if _, err := sink.Put(ctx, key, bytes.NewReader([]byte("occupied")), labelsink.PutOptions{}); err != nil {
		t.Fatalf("seed artifact: %v", err)
	}

	_, err := svc.Issue(ctx, testSpecimen(), label.Options{})
	if err == nil || !strings.Contains(err.Error(), "store label artifact:") {
		t.Fatalf("collision error = %v", err)
	}
	if rows, _ := arch.List(ctx, 0); len(rows) != 0 {
		t.Fatalf("archive holds %d issuances after sink failure", len(rows))
	}
}

func TestIssueArchiveFailureDeletesArtifact(t *testing.T) {
	ctx := context.Background()
	sink := labelsink.NewMemory()
	arch := failRecordArchive{Store: archive.NewMemory(), err: errors.New("archive down")}
	svc, err := New(sink, arch)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Issue(ctx, testSpecimen(), label.Options{})
	if err == nil || !strings.Contains(err.Error(), "record issuance:") || !strings.Contains(err.Error(), "archive down") {
		t.Fatalf("archive failure error = %v", err)
	}
	if infos, _ := sink.List(ctx, ""); len(infos) != 0 {
		t.Fatalf("artifact survived failed issuance: %+v", infos)
	}
}

func TestIssueArchiveFailureWarnsWhenCleanupFails(t *testing.T) {
	ctx := context.Background()
	inner := labelsink.NewMemory()
	sink := failDeleteSink{Store: inner, err: errors.New("delete down")}
	arch := failRecordArchive{Store: archive.NewMemory(), err: errors.New("archive down")}
	logger := &captureLogger{}
	svc, err := New(sink, arch, WithLogger(logger))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if _, err := svc.Issue(ctx, testSpecimen(), label.Options{}); err == nil {
		t.Fatal("expected issuance failure")
	}
	if !logger.hasWarn("orphaned label artifact") {
		t.Fatalf("expected orphan warning, warns = %q", logger.warns)
	}
	if infos, _ := inner.List(ctx, ""); len(infos) != 1 {
		t.Fatalf("expected orphaned artifact to remain, sink holds %d", len(infos))
	}
	if len(logger.errors) == 0 {
		t.Fatal("expected issuance failure to be logged")
	}
}

func TestHistoryAndRecent(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	first := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	svc.now = func() time.Time { return first }
	svc.newID = func() uuid.UUID { return uuid.MustParse("11111111-1111-1111-1111-111111111111") }
	if _, err := svc.Issue(ctx, testSpecimen(), label.Options{}); err != nil {
		t.Fatalf("issue first: %v", err)
	}

	svc.now = func() time.Time { return second }
	svc.newID = func() uuid.UUID { return uuid.MustParse("22222222-2222-2222-2222-222222222222") }
	if _, err := svc.Issue(ctx, testSpecimen(), label.Options{}); err != nil {
		t.Fatalf("issue second: %v", err)
	}

	history, err := svc.History(ctx, "wols:abc123")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 || !history[0].IssuedAt.Equal(second) || !history[1].IssuedAt.Equal(first) {
		t.Fatalf("history order: %+v", history)
	}
	if history, err := svc.History(ctx, "wols:other"); err != nil || len(history) != 0 {
		t.Fatalf("history for unknown specimen: %v %+v", err, history)
	}

	recent, err := svc.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 1 || !recent[0].IssuedAt.Equal(second) {
		t.Fatalf("recent = %+v", recent)
	}
	if all, err := svc.Recent(ctx, 0); err != nil || len(all) != 2 {
		t.Fatalf("recent without limit: %v %+v", err, all)
	}
}

func TestArtifactURL(t *testing.T) {
	ctx := context.Background()

	svc, _, _ := newTestService(t)
	if _, err := svc.ArtifactURL(ctx, "labels/abc123/x.png", time.Minute); !errors.Is(err, labelsink.ErrUnsupported) {
		t.Fatalf("memory sink url error = %v", err)
	}

	s3svc, err := New(labelsink.NewMockS3ForTests(), archive.NewMemory())
	if err != nil {
		t.Fatalf("new s3 service: %v", err)
	}
	url, err := s3svc.ArtifactURL(ctx, "labels/abc123/x.png", time.Minute)
	if err != nil {
		t.Fatalf("artifact url: %v", err)
	}
	if !strings.Contains(url, "labels/abc123/x.png") || !strings.Contains(url, "X-Amz-Signature") {
		t.Fatalf("unsigned or mispointed url: %s", url)
	}
}

func TestNoopLoggerIsSilent(t *testing.T) {
	logger := noopLogger{}
	logger.Debug("msg", "k", "v")
	logger.Info("msg", "k", "v")
	logger.Warn("msg", "k", "v")
	logger.Error("msg", "k", "v")
}
