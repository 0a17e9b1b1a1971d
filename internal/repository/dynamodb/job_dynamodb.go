package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"jobapi/internal/config"
	"jobapi/internal/model"
	"jobapi/internal/repository"
)

// dynamoClient defines the methods of the DynamoDB client that we use.
// This is used for mocking the client in tests.
type dynamoClient interface {
	PutItem(ctx context.Context,
		params *dynamodb.PutItemInput,
		optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context,
		params *dynamodb.GetItemInput,
		optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context,
		params *dynamodb.UpdateItemInput,
		optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DescribeTable(ctx context.Context,
		params *dynamodb.DescribeTableInput,
		optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

var _ dynamoClient = (*dynamodb.Client)(nil)

// jobItem is the stored shape of a job: one item per job, partition key jobId.
type jobItem struct {
	JobID       string    `dynamodbav:"jobId"`
	Status      string    `dynamodbav:"status"`
	CreatedAt   time.Time `dynamodbav:"createdAt"`
	UpdatedAt   time.Time `dynamodbav:"updatedAt"`
	Filename    string    `dynamodbav:"filename"`
	ContentType string    `dynamodbav:"contentType"`
	Bucket      string    `dynamodbav:"bucket"`
	Key         string    `dynamodbav:"key"`
}

// JobDynamoDB is a DynamoDB implementation of repository.JobRepository.
type JobDynamoDB struct {
	client dynamoClient
	table  string
}

var _ repository.JobRepository = (*JobDynamoDB)(nil)

// New loads the default AWS configuration and returns a repository over table.
// Static credentials and a custom endpoint are used when configured (e.g. DynamoDB Local).
func New(ctx context.Context, cfg config.DynamoDBConfig, table string) (*JobDynamoDB, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newWithClient(client, table), nil
}

func newWithClient(client dynamoClient, table string) *JobDynamoDB {
	return &JobDynamoDB{client: client, table: table}
}

// Create puts the item only if no item with the same jobId exists.
func (r *JobDynamoDB) Create(ctx context.Context, job *model.Job) error {
	item, err := attributevalue.MarshalMap(toItem(job))
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(jobId)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return fmt.Errorf("%w: %s", repository.ErrAlreadyExists, job.ID)
		}
		return err
	}
	return nil
}

// FindByID reads the item with a strongly consistent read.
func (r *JobDynamoDB) FindByID(ctx context.Context, id string) (*model.Job, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            keyOf(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, repository.ErrNotFound
	}
	var it jobItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("unmarshal job: %w", err)
	}
	return it.toModel(), nil
}

// MarkUploaded sets status and updatedAt. The existence condition stops UpdateItem from
// creating a partial item for an unknown jobId.
func (r *JobDynamoDB) MarkUploaded(ctx context.Context, id string, at time.Time) error {
	ts, err := attributevalue.Marshal(at.UTC())
	if err != nil {
		return fmt.Errorf("marshal timestamp: %w", err)
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(r.table),
		Key:                      keyOf(id),
		UpdateExpression:         aws.String("SET #st = :uploaded, updatedAt = :now"),
		ConditionExpression:      aws.String("attribute_exists(jobId)"),
		ExpressionAttributeNames: map[string]string{"#st": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uploaded": &types.AttributeValueMemberS{Value: string(model.JobStatusUploaded)},
			":now":      ts,
		},
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return repository.ErrNotFound
		}
		return err
	}
	return nil
}

// Ping describes the table, which fails when the table or the endpoint is unreachable.
func (r *JobDynamoDB) Ping(ctx context.Context) error {
	_, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.table)})
	return err
}

func keyOf(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"jobId": &types.AttributeValueMemberS{Value: id},
	}
}

func toItem(j *model.Job) jobItem {
	return jobItem{
		JobID:       j.ID,
		Status:      string(j.Status),
		CreatedAt:   j.CreatedAt.UTC(),
		UpdatedAt:   j.UpdatedAt.UTC(),
		Filename:    j.Filename,
		ContentType: j.ContentType,
		Bucket:      j.Bucket,
		Key:         j.Key,
	}
}

func (it jobItem) toModel() *model.Job {
	return &model.Job{
		ID:          it.JobID,
		Status:      model.JobStatus(it.Status),
		CreatedAt:   it.CreatedAt.UTC(),
		UpdatedAt:   it.UpdatedAt.UTC(),
		Filename:    it.Filename,
		ContentType: it.ContentType,
		Bucket:      it.Bucket,
		Key:         it.Key,
	}
}
