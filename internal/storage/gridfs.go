package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"enotice/internal/config"
)

var ErrFileNotFound = errors.New("file not found")

// Object describes a stored attachment and its durable retrieval URL.
type Object struct {
	ID          string
	Name        string
	URL         string
	MIMEClass   string
	ContentType string
}

// Store is the attachment store consumed by the submission workflow and the
// file-serving handler.
type Store interface {
	Upload(ctx context.Context, class, name, contentType string, r io.Reader) (*Object, error)
	Open(ctx context.Context, id string) (io.ReadCloser, *Object, error)
}

type fileMetadata struct {
	ContentType string `bson:"content_type"`
	MIMEClass   string `bson:"mime_class"`
}

type gridFSStore struct {
	bucket  *gridfs.Bucket
	baseURL string
}

func NewGridFSStore(db *mongo.Database, cfg *config.Config) (Store, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName("attachments"))
	if err != nil {
		return nil, fmt.Errorf("creating attachment bucket: %w", err)
	}
	return &gridFSStore{bucket: bucket, baseURL: cfg.Server.BaseURL}, nil
}

// Upload streams the file into GridFS under a class-namespaced, collision-resistant
// name (time-based prefix plus the original filename).
func (s *gridFSStore) Upload(ctx context.Context, class, name, contentType string, r io.Reader) (*Object, error) {
	filename := fmt.Sprintf("%s/%s_%s", PathFor(class), strconv.FormatInt(time.Now().UnixMilli(), 10), name)
	fileID := primitive.NewObjectID()

	uploadOpts := options.GridFSUpload().SetMetadata(bson.M{
		"content_type": contentType,
		"mime_class":   class,
	})

	stream, err := s.bucket.OpenUploadStreamWithID(fileID, filename, uploadOpts)
	if err != nil {
		return nil, fmt.Errorf("opening upload stream: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetWriteDeadline(deadline)
	}

	if _, err := io.Copy(stream, r); err != nil {
		_ = stream.Abort()
		return nil, fmt.Errorf("writing attachment: %w", err)
	}
	if err := stream.Close(); err != nil {
		return nil, fmt.Errorf("finalizing attachment: %w", err)
	}

	return &Object{
		ID:          fileID.Hex(),
		Name:        filename,
		URL:         s.baseURL + "/files/" + fileID.Hex(),
		MIMEClass:   class,
		ContentType: contentType,
	}, nil
}

func (s *gridFSStore) Open(ctx context.Context, id string) (io.ReadCloser, *Object, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil, ErrFileNotFound
	}

	stream, err := s.bucket.OpenDownloadStream(oid)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, nil, ErrFileNotFound
		}
		return nil, nil, fmt.Errorf("opening attachment %s: %w", id, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetReadDeadline(deadline)
	}

	file := stream.GetFile()
	var meta fileMetadata
	if len(file.Metadata) > 0 {
		_ = bson.Unmarshal(file.Metadata, &meta)
	}

	obj := &Object{
		ID:          id,
		Name:        file.Name,
		URL:         s.baseURL + "/files/" + id,
		MIMEClass:   meta.MIMEClass,
		ContentType: meta.ContentType,
	}
	return stream, obj, nil
}
