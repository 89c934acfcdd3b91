package core

import (
	"context"
	"fmt"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DynamoDBClient defines the interface needed for scanning.
type DynamoDBClient interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoDBRecordFetcher implements RecordFetcher by scanning a DynamoDB table.
// Items may carry different attributes; Columns is the union in first-seen order.
type DynamoDBRecordFetcher struct {
	Client DynamoDBClient
	Table  string
}

// NewDynamoDBRecordFetcher creates a new fetcher with the given AWS config.
func NewDynamoDBRecordFetcher(cfg aws.Config, table string) *DynamoDBRecordFetcher {
	return &DynamoDBRecordFetcher{
		Client: dynamodb.NewFromConfig(cfg),
		Table:  table,
	}
}

func (f *DynamoDBRecordFetcher) Fetch(ctx context.Context) (*Table, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(f.Table),
	}

	paginator := dynamodb.NewScanPaginator(f.Client, input)
	table := &Table{}

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan table %s: %w", f.Table, err)
		}

		var pageItems []map[string]interface{}
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &pageItems); err != nil {
			return nil, fmt.Errorf("failed to unmarshal items: %w", err)
		}
		for _, it := range pageItems {
			item := make(map[string]string, len(it))
			for k, v := range it {
				if !slices.Contains(table.Columns, k) {
					table.Columns = append(table.Columns, k)
				}
				item[k] = cellString(v)
			}
			table.Rows = append(table.Rows, item)
		}
	}

	return table, nil
}
