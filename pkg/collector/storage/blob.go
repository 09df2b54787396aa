package storage

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/ukaji3/opendata-collector/pkg/collector/models"
	"github.com/ukaji3/opendata-collector/pkg/collector/output"
	"go.uber.org/zap"
)

// BlobOptions configures a BlobSink.
type BlobOptions struct {
	RawContainer   string
	FinalContainer string
	Logger         *zap.Logger
}

// container is one upload destination; the container is created on first use.
type container struct {
	client  *azblob.Client
	name    string
	ensured bool
}

// BlobSink stores raw documents and processed series in Azure Blob Storage.
// Raw and processed data may live in different storage accounts.
type BlobSink struct {
	raw    *container
	final  *container
	logger *zap.Logger
}

// NewBlobSink connects to the raw and final accounts. When both connection
// strings are equal a single client is shared.
func NewBlobSink(rawConnection, finalConnection string, opts BlobOptions) (*BlobSink, error) {
	if opts.RawContainer == "" {
		opts.RawContainer = DefaultRawContainer
	}
	if opts.FinalContainer == "" {
		opts.FinalContainer = DefaultFinalContainer
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	rawClient, err := azblob.NewClientFromConnectionString(rawConnection, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to raw data account: %w", err)
	}
	finalClient := rawClient
	if finalConnection != rawConnection {
		finalClient, err = azblob.NewClientFromConnectionString(finalConnection, nil)
		if err != nil {
			return nil, fmt.Errorf("connect to final data account: %w", err)
		}
	}

	return &BlobSink{
		raw:    &container{client: rawClient, name: opts.RawContainer},
		final:  &container{client: finalClient, name: opts.FinalContainer},
		logger: opts.Logger,
	}, nil
}

// StoreRaw uploads the downloaded document under name, replacing any
// previous copy.
func (s *BlobSink) StoreRaw(ctx context.Context, name string, content []byte) error {
	return s.upload(ctx, s.raw, name, content, contentType(name))
}

// StoreFinal uploads the series as <name>.csv.
func (s *BlobSink) StoreFinal(ctx context.Context, name string, series models.Series) error {
	body, err := output.ToCSV(series)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return s.upload(ctx, s.final, FinalName(name), body, contentTypeCSV)
}

// Ping checks that both accounts answer, without writing.
func (s *BlobSink) Ping(ctx context.Context) error {
	for _, c := range []*container{s.raw, s.final} {
		pager := c.client.NewListContainersPager(nil)
		if _, err := pager.NextPage(ctx); err != nil {
			return fmt.Errorf("list containers for %s: %w", c.name, err)
		}
	}
	return nil
}

func (s *BlobSink) upload(ctx context.Context, c *container, blobName string, body []byte, ct string) error {
	if err := s.ensureContainer(ctx, c); err != nil {
		return err
	}
	_, err := c.client.UploadBuffer(ctx, c.name, blobName, body, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: to.Ptr(ct)},
	})
	if err != nil {
		return fmt.Errorf("upload %s/%s: %w", c.name, blobName, err)
	}
	s.logger.Info("uploaded blob",
		zap.String("container", c.name),
		zap.String("blob", blobName),
		zap.Int("bytes", len(body)))
	return nil
}

func (s *BlobSink) ensureContainer(ctx context.Context, c *container) error {
	if c.ensured {
		return nil
	}
	_, err := c.client.CreateContainer(ctx, c.name, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return fmt.Errorf("create container %s: %w", c.name, err)
	}
	c.ensured = true
	return nil
}
