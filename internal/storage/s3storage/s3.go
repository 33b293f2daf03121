package s3storage

import (
	"context"
	"io"
	"regexp"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/denismitr/imagine/internal/storage"
	"github.com/pkg/errors"
)

// keys are "<image id>/<slice filename>.<ext>"
var rxKey = regexp.MustCompile(`^[0-9a-f]{24}/[a-z0-9_\-]+\.(jpg|jpeg|png|gif|tif|tiff|bmp)$`)

type Config struct {
	AccessKey        string
	AccessSecret     string
	AccessToken      string
	Region           string
	Endpoint         string
	S3ForcePathStyle bool
	EnableSSL        bool
}

type RemoteStorage struct {
	cfg     Config
	session *session.Session
	client  *s3.S3
}

var _ storage.Storage = (*RemoteStorage)(nil)

func New(cfg Config) (*RemoteStorage, error) {
	s3Config := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.AccessSecret, cfg.AccessToken),
		Endpoint:         aws.String(cfg.Endpoint),
		Region:           aws.String(cfg.Region),
		DisableSSL:       aws.Bool(!cfg.EnableSSL),
		S3ForcePathStyle: aws.Bool(cfg.S3ForcePathStyle),
	}

	sess, err := session.NewSession(s3Config)
	if err != nil {
		return nil, errors.Wrapf(storage.ErrStorageFailed, "s3 session could not be created: %v", err)
	}

	return &RemoteStorage{
		cfg:     cfg,
		session: sess,
		client:  s3.New(sess),
	}, nil
}

func isValidKey(key string) bool {
	return rxKey.MatchString(key)
}

func (rs *RemoteStorage) Put(ctx context.Context, namespace, filename string, source io.Reader) (*storage.Item, error) {
	if !isValidKey(filename) {
		return nil, errors.Wrapf(storage.ErrInvalidKey, "%s", filename)
	}

	if err := rs.ensureNamespace(ctx, namespace); err != nil {
		return nil, err
	}

	uploader := s3manager.NewUploaderWithClient(rs.client, func(u *s3manager.Uploader) {
		u.Concurrency = 1
	})

	result, err := uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Body:   source,
		Bucket: aws.String(namespace),
		Key:    aws.String(filename),
	})

	if err != nil {
		return nil, errors.Wrapf(
			storage.ErrStorageFailed,
			"could not upload file %s to namespace %s: %v",
			filename, namespace, err,
		)
	}

	return &storage.Item{
		Path: namespace + "/" + filename,
		URL:  result.Location,
	}, nil
}

func (rs *RemoteStorage) Download(ctx context.Context, dst io.Writer, namespace, filename string) error {
	downloader := s3manager.NewDownloaderWithClient(rs.client, func(d *s3manager.Downloader) {
		// sequentialWriterAt relies on parts arriving in order
		d.Concurrency = 1
	})

	_, err := downloader.DownloadWithContext(ctx, sequentialWriterAt{w: dst}, &s3.GetObjectInput{
		Bucket: aws.String(namespace),
		Key:    aws.String(filename),
	})

	if err != nil {
		return errors.Wrapf(
			storage.ErrStorageFailed,
			"could not download file %s from namespace %s: %v",
			filename, namespace, err,
		)
	}

	return nil
}

// Remove file from namespace
func (rs *RemoteStorage) Remove(ctx context.Context, namespace, filename string) error {
	_, err := rs.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(namespace),
		Key:    aws.String(filename),
	})

	if err != nil {
		return errors.Wrapf(storage.ErrStorageFailed, "could not remove file %s from namespace %s: %v", filename, namespace, err)
	}

	err = rs.client.WaitUntilObjectNotExistsWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(namespace),
		Key:    aws.String(filename),
	})

	if err != nil {
		return errors.Wrapf(storage.ErrStorageFailed, "could not confirm removal of file %s from namespace %s", filename, namespace)
	}

	return nil
}

func (rs *RemoteStorage) ensureNamespace(ctx context.Context, namespace string) error {
	_, err := rs.client.CreateBucketWithContext(ctx, &s3.CreateBucketInput{Bucket: aws.String(namespace)})
	if err == nil {
		return nil
	}

	if aerr, ok := err.(awserr.Error); ok {
		switch aerr.Code() {
		case s3.ErrCodeBucketAlreadyExists, s3.ErrCodeBucketAlreadyOwnedByYou:
			return nil
		}
	}

	return errors.Wrapf(storage.ErrStorageFailed, "could not create namespace %s: %v", namespace, err)
}
