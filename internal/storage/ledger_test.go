package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ajwill85/hri-3.0/internal/collector"
	"github.com/ajwill85/hri-3.0/internal/config"
	"github.com/ajwill85/hri-3.0/internal/processor"
)

func TestMemoryLedgerAppendOnly(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	if _, ok, err := l.Get(ctx, "https://a.example"); ok || err != nil {
		t.Fatalf("empty ledger Get: ok=%v err=%v", ok, err)
	}
	rec := PostedRecord{ArticleURL: "https://a.example", Title: "A", Category: "Privacy", PostedAt: time.Now()}
	if err := l.Put(ctx, rec); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	got, ok, err := l.Get(ctx, "https://a.example")
	if !ok || err != nil || got.Title != "A" {
		t.Fatalf("Get after Put: %+v ok=%v err=%v", got, ok, err)
	}
	if err := l.Put(ctx, rec); !errors.Is(err, ErrAlreadyPosted) {
		t.Fatalf("second Put = %v, want ErrAlreadyPosted", err)
	}
	if l.Len() != 1 {
		t.Fatalf("Len = %d, want 1", l.Len())
	}
}

type fakeDynamo struct {
	items   map[string]map[string]ddbtypes.AttributeValue
	err     error
	lastPut *dynamodb.PutItemInput
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	key := in.Key["articleUrl"].(*ddbtypes.AttributeValueMemberS).Value
	return &dynamodb.GetItemOutput{Item: f.items[key]}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastPut = in
	key := in.Item["articleUrl"].(*ddbtypes.AttributeValueMemberS).Value
	if _, ok := f.items[key]; ok && in.ConditionExpression != nil {
		return nil, &ddbtypes.ConditionalCheckFailedException{Message: aws.String("exists")}
	}
	f.items[key] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func TestDynamoLedgerRoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := &fakeDynamo{items: map[string]map[string]ddbtypes.AttributeValue{}}
	l := NewDynamoLedger(fake, "hri-posted-articles")

	postedAt := time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC)
	if err := l.Put(ctx, PostedRecord{ArticleURL: "https://a.example", Title: "A", PostedAt: postedAt}); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if aws.ToString(fake.lastPut.TableName) != "hri-posted-articles" {
		t.Fatalf("table = %q", aws.ToString(fake.lastPut.TableName))
	}

	rec, ok, err := l.Get(ctx, "https://a.example")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	// 缺失的分类和来源写成 Unknown
	if rec.Category != unknownAttr || rec.Source != unknownAttr || !rec.PostedAt.Equal(postedAt) {
		t.Fatalf("unexpected record: %+v", rec)
	}

	if err := l.Put(ctx, PostedRecord{ArticleURL: "https://a.example"}); !errors.Is(err, ErrAlreadyPosted) {
		t.Fatalf("duplicate Put = %v, want ErrAlreadyPosted", err)
	}
	if _, ok, _ := l.Get(ctx, "https://missing.example"); ok {
		t.Fatalf("missing key reported as present")
	}

	fake.err = errors.New("throttled")
	if _, _, err := l.Get(ctx, "https://a.example"); err == nil {
		t.Fatalf("expected error to propagate from Get")
	}
}

func TestNewLedgerBackends(t *testing.T) {
	l, err := NewLedger(context.Background(), config.LedgerConfig{Backend: "memory"}, nil)
	if err != nil {
		t.Fatalf("memory backend: %v", err)
	}
	if _, ok := l.(*MemoryLedger); !ok {
		t.Fatalf("expected *MemoryLedger, got %T", l)
	}
	if _, err := NewLedger(context.Background(), config.LedgerConfig{Backend: "postgres"}, nil); err == nil {
		t.Fatalf("postgres backend without store should fail")
	}
	if _, err := NewLedger(context.Background(), config.LedgerConfig{Backend: "etcd"}, nil); err == nil {
		t.Fatalf("unknown backend should fail")
	}
}

type fakeS3 struct {
	puts map[string]string
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, _ := io.ReadAll(in.Body)
	f.puts[aws.ToString(in.Key)] = string(b)
	return &s3.PutObjectOutput{}, nil
}

func TestS3ExporterWritesLatestAndArchive(t *testing.T) {
	fake := &fakeS3{puts: map[string]string{}}
	e := NewS3Exporter(fake, "bucket", "hri")

	feed := &processor.Feed{Success: true, RunID: "run-1", Count: 1, Articles: []collector.Article{{Title: "A"}}}
	if err := e.SaveFeed(context.Background(), feed); err != nil {
		t.Fatalf("SaveFeed error: %v", err)
	}
	latest, ok := fake.puts["hri/feed/latest.json"]
	if !ok || !strings.Contains(latest, `"runId":"run-1"`) {
		t.Fatalf("latest.json missing or wrong: %q", latest)
	}
	if _, ok := fake.puts["hri/feed/runs/run-1.json"]; !ok {
		t.Fatalf("archive object missing: %v", fake.puts)
	}

	if e, err := NewS3ExporterFromConfig(context.Background(), config.S3Config{}); e != nil || err != nil {
		t.Fatalf("unconfigured exporter should be nil, got %v %v", e, err)
	}
}

func TestNewsKey(t *testing.T) {
	a := collector.Article{URL: "https://a.example", Title: "One"}
	b := collector.Article{URL: "https://a.example", Title: "Two"}
	if newsKey(a) != newsKey(b) {
		t.Fatalf("same url should map to same key")
	}
	c := collector.Article{URL: "#", Title: "One"}
	d := collector.Article{URL: "#", Title: "Two"}
	if newsKey(c) == newsKey(d) {
		t.Fatalf("sentinel urls should be distinguished by title")
	}
	if len(newsKey(a)) != 40 {
		t.Fatalf("key should be a sha1 hex digest")
	}
}
