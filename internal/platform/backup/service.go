package backup

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"hrdesk/internal/domain/records"
	appconfig "hrdesk/internal/platform/config"
)

type Result struct {
	Name        string `json:"name"`
	Bytes       int    `json:"bytes"`
	Collections int    `json:"collections"`
	Sink        string `json:"sink"`
}

// OpenSink picks S3 when a bucket is configured and the backup directory
// otherwise.
func OpenSink(ctx context.Context, cfg appconfig.Config) (Sink, error) {
	if bucket := strings.TrimSpace(cfg.BackupS3Bucket); bucket != "" {
		return NewS3Sink(ctx, bucket, cfg.BackupS3Prefix)
	}
	return NewFileSink(cfg.BackupDir)
}

type Service struct {
	Store *records.Store
	Sink  Sink
}

func NewService(store *records.Store, sink Sink) *Service {
	return &Service{Store: store, Sink: sink}
}

// Run takes a snapshot and writes it to the sink under a timestamped name.
func (s *Service) Run(ctx context.Context) (Result, error) {
	snap, err := Take(ctx, s.Store)
	if err != nil {
		return Result{}, err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, snap); err != nil {
		return Result{}, fmt.Errorf("backup: encode: %w", err)
	}
	name := "hrdesk-" + snap.CreatedAt.Format("20060102T150405.000Z") + Extension
	size := buf.Len()
	if err := s.Sink.Put(ctx, name, &buf); err != nil {
		return Result{}, err
	}
	slog.Info("backup written", "name", name, "bytes", size, "sink", s.Sink.String())
	return Result{Name: name, Bytes: size, Collections: len(snap.Collections), Sink: s.Sink.String()}, nil
}

// RestoreFrom reads a named snapshot from the sink and restores it.
func (s *Service) RestoreFrom(ctx context.Context, name string) (Snapshot, error) {
	rc, err := s.Sink.Open(ctx, name)
	if err != nil {
		return Snapshot{}, err
	}
	defer func() { _ = rc.Close() }()
	snap, err := Decode(rc)
	if err != nil {
		return Snapshot{}, err
	}
	if err := Restore(ctx, s.Store, snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Latest returns the newest snapshot name, or "" when the sink is empty.
func (s *Service) Latest(ctx context.Context) (string, error) {
	names, err := s.Sink.List(ctx)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", nil
	}
	return names[len(names)-1], nil
}
