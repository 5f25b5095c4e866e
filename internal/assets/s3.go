package assets

import (
	"context"
	"fmt"
	"io"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config — параметры бакета с моделями (AWS S3 или MinIO).
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string // для MinIO
	AccessKeyID     string // пусто — стандартная цепочка AWS
	SecretAccessKey string
	PathStyle       bool
	URLExpiry       time.Duration
}

// S3Resolver выдаёт presigned GET-ссылки на объекты бакета.
type S3Resolver struct {
	client  *s3.Client
	bucket  string
	expiry  time.Duration
	presign *s3.PresignClient
}

func NewS3Resolver(ctx context.Context, cfg S3Config) (*S3Resolver, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &S3Resolver{client: client, bucket: cfg.Bucket, expiry: expiry, presign: s3.NewPresignClient(client)}, nil
}

func (r *S3Resolver) ResolveURL(ctx context.Context, key string) (string, error) {
	out, err := r.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	}, func(po *s3.PresignOptions) { po.Expires = r.expiry })
	if err != nil {
		return "", err
	}
	return out.URL, nil
}

// Upload кладёт объект в бакет (загрузка моделей из админки).
func (r *S3Resolver) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", key, err)
	}
	return nil
}
