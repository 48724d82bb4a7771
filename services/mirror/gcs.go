package mirrorsvc

import (
	"context"
	"encoding/json"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"github.com/owais185-web/LuminaLMSPush/core"
)

// GCSMirror writes one JSON object per entity at <collection>/<id>.json.
type GCSMirror struct {
	client *storage.Client
	bucket string
}

var _ core.RemoteMirror = (*GCSMirror)(nil)

func NewGCSMirror(ctx context.Context, conf core.MirrorConfig) (*GCSMirror, error) {
	if conf.GCSBucket == "" {
		return nil, errors.New("gcs mirror: bucket is required")
	}
	opts := make([]option.ClientOption, 0, 1)
	if conf.GCSCredsFile != "" {
		opts = append(opts, option.WithCredentialsFile(conf.GCSCredsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating gcs client")
	}
	return &GCSMirror{client: client, bucket: conf.GCSBucket}, nil
}

var ErrInvalidObjectID = errors.New("gcs mirror: id must be a single path segment")

// objectName keeps every object inside its collection prefix.
func objectName(collection, id string) (string, error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, "/\\") {
		return "", errors.Wrapf(ErrInvalidObjectID, "%s/%q", collection, id)
	}
	return collection + "/" + id + ".json", nil
}

func (m *GCSMirror) Put(ctx context.Context, collection, id string, doc map[string]interface{}) error {
	name, err := objectName(collection, id)
	if err != nil {
		return err
	}

	// cancelling before Close aborts the upload instead of committing a partial object
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := m.client.Bucket(m.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "application/json"
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		cancel()
		_ = w.Close()
		return errors.Wrap(err, "writing gcs object")
	}
	return errors.Wrap(w.Close(), "closing gcs writer")
}

func (m *GCSMirror) Delete(ctx context.Context, collection, id string) error {
	name, err := objectName(collection, id)
	if err != nil {
		return err
	}
	err = m.client.Bucket(m.bucket).Object(name).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return errors.Wrap(err, "deleting gcs object")
}

func (m *GCSMirror) Close() error { return m.client.Close() }
