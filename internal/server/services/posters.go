package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/cuxvas/peliculas/internal/logging"
	sc "github.com/cuxvas/peliculas/internal/server/config"
	"github.com/cuxvas/peliculas/internal/server/models"
	"github.com/cuxvas/peliculas/internal/server/repositories/repomanager"
)

const presignExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// PosterUpload is a presigned slot the client PUTs the poster image to.
type PosterUpload struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// PosterService stores movie posters in an S3-compatible bucket and hands
// out presigned URLs for them. Stored posters are referenced from the
// pelicula row as s3://bucket/key.
type PosterService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	logger      logging.Logger
}

func NewPosterService(db *sql.DB, m repomanager.RepositoryManager, config *sc.Config, logger logging.Logger) *PosterService {
	return &PosterService{
		db:          db,
		repomanager: m,
		config:      config,
		logger:      logger,
	}
}

func posterKey(peliculaID int) string {
	return fmt.Sprintf("peliculas/%d/%v", peliculaID, uuid.New())
}

func (s *PosterService) bucketURI(key string) string {
	return "s3://" + s.config.S3Bucket + "/" + key
}

func (s *PosterService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// PresignUpload reserves a new object key for the movie's poster, points the
// movie at it and returns a presigned PUT URL for the upload.
func (s *PosterService) PresignUpload(ctx context.Context, peliculaID int) (*PosterUpload, error) {
	repo := s.repomanager.Peliculas(s.db)
	if _, err := repo.Get(ctx, peliculaID); err != nil {
		return nil, err
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, err
	}

	bucket := s.config.S3Bucket
	key := posterKey(peliculaID)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, err
	}

	if err := repo.SetPoster(ctx, peliculaID, s.bucketURI(key)); err != nil {
		return nil, err
	}

	return &PosterUpload{Key: key, URL: req.URL}, nil
}

func (s *PosterService) PresignDownload(ctx context.Context, key string) (string, error) {
	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", err
	}
	return s.presignDownload(ctx, presignClient, key)
}

func (s *PosterService) presignDownload(ctx context.Context, pc *s3.PresignClient, key string) (string, error) {
	bucket := s.config.S3Bucket

	req, err := presignGetObject(pc, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

func (s *PosterService) posterKeyOf(poster string) (string, bool) {
	key, ok := strings.CutPrefix(poster, "s3://"+s.config.S3Bucket+"/")
	return key, ok && key != ""
}

// ResolvePoster turns a bucket reference into a presigned GET URL. Any other
// poster value is returned unchanged.
func (s *PosterService) ResolvePoster(ctx context.Context, poster string) (string, error) {
	key, ok := s.posterKeyOf(poster)
	if !ok {
		return poster, nil
	}
	return s.PresignDownload(ctx, key)
}

// ResolvePosters rewrites the posters of ps in place, sharing one presign
// client across the batch. A poster that cannot be presigned keeps its stored
// value.
func (s *PosterService) ResolvePosters(ctx context.Context, ps ...*models.Pelicula) {
	var presignClient *s3.PresignClient

	for _, p := range ps {
		key, ok := s.posterKeyOf(p.Poster)
		if !ok {
			continue
		}

		if presignClient == nil {
			pc, err := s.getPresignClient(ctx)
			if err != nil {
				s.logger.Warn(ctx, "presign client unavailable", "error", err)
				return
			}
			presignClient = pc
		}

		url, err := s.presignDownload(ctx, presignClient, key)
		if err != nil {
			s.logger.Warn(ctx, "poster presign failed", "pelicula_id", p.ID, "error", err)
			continue
		}
		p.Poster = url
	}
}
