package storage

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"citegraph/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectInfo beschreibt ein Objekt im Bucket.
type ObjectInfo struct {
	Key          string
	LastModified time.Time
}

// ObjectStore legt Snapshots und Backups in einem S3-kompatiblen Bucket ab.
type ObjectStore struct {
	Client  *s3.Client
	Bucket  string
	BaseURL string
}

// NewS3Client erstellt einen S3-Client für den konfigurierten Endpoint.
func NewS3Client(cfg *config.Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3Key != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3Key, cfg.S3Secret, "")))
	}
	if cfg.S3URL != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL:               cfg.S3URL,
					SigningRegion:     cfg.S3Region,
					HostnameImmutable: true,
				}, nil
			},
		)
		opts = append(opts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3URL != ""
	}), nil
}

// NewObjectStore baut Client und Bucket-Zugriff aus der Konfiguration.
func NewObjectStore(cfg *config.Config) (*ObjectStore, error) {
	client, err := NewS3Client(cfg)
	if err != nil {
		return nil, err
	}
	return &ObjectStore{Client: client, Bucket: cfg.S3Bucket, BaseURL: cfg.S3URL}, nil
}

// Upload lädt data unter key hoch und gibt den Link zurück.
func (o *ObjectStore) Upload(ctx context.Context, key string, data []byte) (string, error) {
	_, err := o.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(o.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	if o.BaseURL == "" {
		return fmt.Sprintf("s3://%s/%s", o.Bucket, key), nil
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(o.BaseURL, "/"), o.Bucket, key), nil
}

// List liefert alle Objekte unter prefix.
func (o *ObjectStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	paginator := s3.NewListObjectsV2Paginator(o.Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(o.Bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			info := ObjectInfo{Key: aws.ToString(obj.Key)}
			if obj.LastModified != nil {
				info.LastModified = *obj.LastModified
			}
			objects = append(objects, info)
		}
	}
	return objects, nil
}

// Delete entfernt ein Objekt.
func (o *ObjectStore) Delete(ctx context.Context, key string) error {
	_, err := o.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(o.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// ExpiredObjects gibt die Objekte zurück, die nach Behalten der keep neuesten übrig bleiben.
func ExpiredObjects(objects []ObjectInfo, keep int) []ObjectInfo {
	if keep < 0 {
		keep = 0
	}
	if len(objects) <= keep {
		return nil
	}
	sorted := make([]ObjectInfo, len(objects))
	copy(sorted, objects)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].LastModified.After(sorted[j].LastModified)
	})
	return sorted[keep:]
}
