package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/ajwill85/hri-3.0/internal/config"
)

const unknownAttr = "Unknown"

// dynamoAPI DynamoDB 客户端中用到的部分，方便测试替换
type dynamoAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoLedger 表结构：分区键 articleUrl(S)，其余字段 title/category/source/postedAt 均为字符串
type DynamoLedger struct {
	client dynamoAPI
	table  string
}

func NewDynamoLedger(client dynamoAPI, table string) *DynamoLedger {
	return &DynamoLedger{client: client, table: table}
}

// NewDynamoLedgerFromConfig 使用默认 AWS 凭证链
func NewDynamoLedgerFromConfig(ctx context.Context, cfg config.LedgerConfig) (*DynamoLedger, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.AWSRegion != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AWSRegion))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}
	return NewDynamoLedger(dynamodb.NewFromConfig(awsCfg), cfg.Table), nil
}

func (d *DynamoLedger) Get(ctx context.Context, articleURL string) (PostedRecord, bool, error) {
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.table),
		Key: map[string]ddbtypes.AttributeValue{
			"articleUrl": &ddbtypes.AttributeValueMemberS{Value: articleURL},
		},
	})
	if err != nil {
		return PostedRecord{}, false, err
	}
	if len(out.Item) == 0 {
		return PostedRecord{}, false, nil
	}

	rec := PostedRecord{
		ArticleURL: stringAttr(out.Item, "articleUrl"),
		Title:      stringAttr(out.Item, "title"),
		Category:   stringAttr(out.Item, "category"),
		Source:     stringAttr(out.Item, "source"),
	}
	if ts := stringAttr(out.Item, "postedAt"); ts != "" {
		rec.PostedAt, _ = time.Parse(time.RFC3339Nano, ts)
	}
	return rec, true, nil
}

func (d *DynamoLedger) Put(ctx context.Context, rec PostedRecord) error {
	_, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item: map[string]ddbtypes.AttributeValue{
			"articleUrl": &ddbtypes.AttributeValueMemberS{Value: rec.ArticleURL},
			"title":      &ddbtypes.AttributeValueMemberS{Value: rec.Title},
			"category":   &ddbtypes.AttributeValueMemberS{Value: orUnknown(rec.Category)},
			"source":     &ddbtypes.AttributeValueMemberS{Value: orUnknown(rec.Source)},
			"postedAt":   &ddbtypes.AttributeValueMemberS{Value: rec.PostedAt.UTC().Format(time.RFC3339Nano)},
		},
		ConditionExpression: aws.String("attribute_not_exists(articleUrl)"),
	})

	var condErr *ddbtypes.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return ErrAlreadyPosted
	}
	return err
}

func stringAttr(item map[string]ddbtypes.AttributeValue, name string) string {
	if v, ok := item[name].(*ddbtypes.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func orUnknown(s string) string {
	if s == "" {
		return unknownAttr
	}
	return s
}
