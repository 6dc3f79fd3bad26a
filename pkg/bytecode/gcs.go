// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package bytecode

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// GCSScheme is the URL prefix of archives stored in Google Cloud Storage.
const GCSScheme = "gs://"

// IsGCSURL returns whether location refers to an object in Google Cloud Storage.
func IsGCSURL(location string) bool {
	return strings.HasPrefix(location, GCSScheme)
}

// ParseGCSURL splits a "gs://bucket/object" URL.
func ParseGCSURL(gcsURL string) (bucket, object string, err error) {
	rest, found := strings.CutPrefix(gcsURL, GCSScheme)
	if !found {
		return "", "", errors.Errorf("GCS URL %q must start with %q", gcsURL, GCSScheme)
	}
	bucket, object, found = strings.Cut(rest, "/")
	if !found || bucket == "" || object == "" {
		return "", "", errors.Errorf("GCS URL %q must be of the form gs://<bucket>/<object>", gcsURL)
	}
	return bucket, object, nil
}

// OpenGCS downloads the bytecode archive stored in Google Cloud Storage at gcsURL ("gs://bucket/object")
// and returns its records.
//
// The archive is held in memory. It uses the default application credentials.
func OpenGCS(ctx context.Context, gcsURL string) (*ZipRecords, error) {
	log := klog.FromContext(ctx)
	bucket, object, err := ParseGCSURL(gcsURL)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "creating GCS storage client")
	}
	defer func() { _ = client.Close() }()

	log.V(1).Info("downloading bytecode archive from GCS", "source", gcsURL)
	startedAt := time.Now()
	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "opening object from GCS %q", gcsURL)
	}
	defer func() { _ = r.Close() }()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "downloading from GCS %q", gcsURL)
	}
	log.V(1).Info("downloaded bytecode archive from GCS", "source", gcsURL, "bytes", len(data),
		"duration", time.Since(startedAt))

	records, err := NewZipRecords(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.WithMessagef(err, "bytecode archive %q", gcsURL)
	}
	return records, nil
}
