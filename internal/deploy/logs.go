package deploy

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// LogObject is one entry in the environment's logs bucket.
type LogObject struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// LogLister lists the contents of an environment's S3 logs bucket.
type LogLister struct {
	client *s3.Client
}

func NewLogLister(cfg aws.Config) *LogLister {
	return &LogLister{client: s3.NewFromConfig(cfg)}
}

// List returns up to limit objects under prefix, newest first.
func (l *LogLister) List(ctx context.Context, bucket, prefix string, limit int) ([]LogObject, error) {
	var objects []LogObject

	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	paginator := s3.NewListObjectsV2Paginator(l.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list s3://%s/%s: %w", bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			entry := LogObject{}
			if obj.Key != nil {
				entry.Key = *obj.Key
			}
			if obj.Size != nil {
				entry.Size = *obj.Size
			}
			if obj.LastModified != nil {
				entry.LastModified = *obj.LastModified
			}
			objects = append(objects, entry)
		}
	}

	sort.Slice(objects, func(i, j int) bool {
		return objects[i].LastModified.After(objects[j].LastModified)
	})
	if limit > 0 && len(objects) > limit {
		objects = objects[:limit]
	}
	return objects, nil
}
