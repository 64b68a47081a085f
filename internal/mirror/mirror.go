package mirror

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/veriflowhq/veriflow/config"
)

// s3PutAPI is the slice of the S3 client the mirror needs. It exists so tests can
// substitute a fake without a live bucket.
type s3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Mirror keeps a cold copy of pinned documents in an S3 bucket. IPFS pinning remains
// the source of truth; the mirror is best-effort and failures only get logged.
type Mirror struct {
	conf   config.MirrorConfig
	client s3PutAPI
}

func New(conf config.MirrorConfig) (*Mirror, error) {
	if !conf.Enabled {
		return &Mirror{conf: conf}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(conf.S3Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(conf.AwsAccessKeyId, conf.AwsSecretAccessKey, "")),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config for document mirror")
	}

	return &Mirror{
		conf:   conf,
		client: s3.NewFromConfig(awsCfg),
	}, nil
}

// Enabled reports whether the mirror is configured to store copies.
func (m *Mirror) Enabled() bool {
	return m.conf.Enabled && m.client != nil
}

// Store writes a document copy under its content address. The object key embeds the
// document type so bucket lifecycle rules can treat document classes differently.
func (m *Mirror) Store(ctx context.Context, documentType, ipfsHash string, content []byte) error {
	if !m.Enabled() {
		return nil
	}

	key := fmt.Sprintf("documents/%s/%s", documentType, ipfsHash)
	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(m.conf.S3BucketName),
		Key:    aws.String(key),
		Body:   bytes.NewReader(content),
	})
	if err != nil {
		return errors.Wrapf(err, "failed to mirror document %s", ipfsHash)
	}

	logrus.Infof("mirrored document %s to s3://%s/%s", ipfsHash, m.conf.S3BucketName, key)
	return nil
}
