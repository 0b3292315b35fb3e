/*
Copyright © 2018 the Heightmap authors.
This file is part of Heightmap.

Heightmap is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Heightmap is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Heightmap.  If not, see <http://www.gnu.org/licenses/>.
*/

package heightmaputil

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/url"
	"os"
	gopath "path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/cenkalti/backoff"
	"github.com/google/go-cloud/blob"
	"github.com/google/go-cloud/blob/fileblob"
	"github.com/google/go-cloud/blob/gcsblob"
	"github.com/google/go-cloud/blob/s3blob"
	"github.com/google/go-cloud/gcp"
)

// maybeDownload checks if the input is an existing file locally. If
// it is not, but it names an object in blob storage, the object is
// downloaded and the path to the downloaded file is returned. Any
// other path is returned unchanged. c is a channel across which
// error and logging messages will be sent.
func maybeDownload(ctx context.Context, path string, c chan string) string {
	// Check if local file exists. If it does, return the given path.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return path
	}
	if IsBlob(path) {
		return downloadBlob(ctx, path, c)
	}
	return path
}

// IsBlob returns whether the given filename represents a blob.
// (i.e., if it starts with `gs://`, 's3://', or 'file://').
func IsBlob(path string) bool {
	return strings.HasPrefix(path, "gs://") || strings.HasPrefix(path, "s3://") || strings.HasPrefix(path, "file://")
}

// OpenBucket returns the blob storage bucket specified by bucketName,
// where bucketName must be in the format 'provider://name' where provider
// is the name of the storage provider and name is the name of the bucket.
// The currently accepted storage providers are "file" for the local
// filesystem (e.g., for testing), "gs" for Google Cloud Storage, and "s3"
// for AWS S3. For the "file" provider the name is the path of a local
// directory.
func OpenBucket(ctx context.Context, bucketName string) (*blob.Bucket, error) {
	u, err := url.Parse(bucketName)
	if err != nil {
		return nil, fmt.Errorf("heightmap.OpenBucket: %v", err)
	}
	switch u.Scheme {
	case "file":
		return fileblob.NewBucket(u.Host + u.Path)
	case "gs":
		return gsBucket(ctx, u.Hostname())
	case "s3":
		return s3Bucket(ctx, u.Hostname())
	default:
		return nil, fmt.Errorf("heightmap.OpenBucket: invalid provider %s", u.Scheme)
	}
}

func gsBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	// See here for information on credentials:
	// https://cloud.google.com/docs/authentication/getting-started
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, name, c)
}

// s3Bucket opens an s3 storage bucket. It assumes the following
// environment variables are set: AWS_REGION, AWS_ACCESS_KEY_ID, and
// AWS_SECRET_ACCESS_KEY.
func s3Bucket(ctx context.Context, name string) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-2"
	}
	c := &aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	}
	s := session.Must(session.NewSession(c))
	return s3blob.OpenBucket(ctx, s, name)
}

// splitBlob splits the path of an object in blob storage into the
// bucket part accepted by OpenBucket and the key of the object inside
// the bucket. For the "file" provider the enclosing directory acts as
// the bucket.
func splitBlob(p string) (bucketName, key string, err error) {
	u, err := url.Parse(p)
	if err != nil {
		return "", "", err
	}
	if u.Scheme == "file" {
		full := u.Host + u.Path
		return "file://" + gopath.Dir(full), gopath.Base(full), nil
	}
	return u.Scheme + "://" + u.Host, strings.TrimPrefix(u.Path, "/"), nil
}

// splitBlobPrefix splits a blob storage URL that names a bucket plus an
// optional key prefix, rather than a single object. For the "file"
// provider the entire path acts as the bucket and the prefix is empty.
func splitBlobPrefix(p string) (bucketName, prefix string, err error) {
	u, err := url.Parse(p)
	if err != nil {
		return "", "", err
	}
	if u.Scheme == "file" {
		return "file://" + u.Host + u.Path, "", nil
	}
	return u.Scheme + "://" + u.Host, strings.TrimPrefix(u.Path, "/"), nil
}

// downloadBlob downloads the specified file from blob storage into a
// temporary directory and returns the path to the downloaded file.
func downloadBlob(ctx context.Context, p string, c chan string) string {
	bucketName, key, err := splitBlob(p)
	if err != nil {
		c <- err.Error()
		return p
	}
	bucket, err := OpenBucket(ctx, bucketName)
	if err != nil {
		c <- err.Error()
		return p
	}
	dir, err := ioutil.TempDir("", "heightmap")
	if err != nil {
		panic(fmt.Errorf("heightmap: failed creating temporary download directory: %v", err))
	}
	w, err := os.Create(filepath.Join(dir, gopath.Base(key)))
	if err != nil {
		panic(fmt.Errorf("heightmap: failed creating file for download: %v", err))
	}
	r, err := newBlobReader(ctx, bucket, key, c)
	if err != nil {
		c <- err.Error()
		return p
	}
	if _, err := io.Copy(w, r); err != nil {
		c <- err.Error()
		return p
	}
	r.Close()
	w.Close()
	return w.Name()
}

// newBlobReader opens a reader for the given bucket key, retrying
// failures with exponential backoff for up to a minute.
func newBlobReader(ctx context.Context, bucket *blob.Bucket, key string, c chan string) (*blob.Reader, error) {
	var r *blob.Reader
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = time.Minute
	err := backoff.RetryNotify(
		func() error {
			var err error
			r, err = bucket.NewReader(ctx, key)
			return err
		},
		bo,
		func(err error, d time.Duration) {
			c <- fmt.Sprintf("heightmap: reading %s: %v: retrying in %v", key, err, d)
		},
	)
	return r, err
}
