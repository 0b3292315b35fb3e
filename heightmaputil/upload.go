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
	"os"
	"path/filepath"

	"github.com/google/go-cloud/blob"
)

// writeOutput writes b to path, which may name either a local file or
// an object in blob storage. The directory of a local path is created
// if it does not exist.
func writeOutput(ctx context.Context, path string, b []byte) error {
	if IsBlob(path) {
		bucketName, key, err := splitBlob(path)
		if err != nil {
			return fmt.Errorf("heightmap: parsing output location %s: %v", path, err)
		}
		bucket, err := OpenBucket(ctx, bucketName)
		if err != nil {
			return fmt.Errorf("heightmap: opening bucket to write %s: %v", path, err)
		}
		w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{})
		if err != nil {
			return fmt.Errorf("heightmap: opening writer for %s: %v", path, err)
		}
		if _, err := w.Write(b); err != nil {
			w.Close()
			return fmt.Errorf("heightmap: writing %s: %v", path, err)
		}
		return w.Close()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("heightmap: creating output directory for %s: %v", path, err)
		}
	}
	if err := ioutil.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("heightmap: writing %s: %v", path, err)
	}
	return nil
}

// uploader collects local stand-ins for output files that belong in
// blob storage and copies them there once the job is done.
type uploader struct {
	// files is a set of file path pairs. The first of each pair
	// is a local file path and the second is a blob storage
	// path where it should be uploaded to.
	files [][2]string
	err   error
	dir   string
}

// maybeUpload checks whether the given output file path refers to
// a blob storage location. If it does, then a temporary file location
// is returned. The file will then be uploaded to blob storage when
// the upload method is run. Shapefile paths bring their .dbf, .shx,
// and .prj companion files along.
func (u *uploader) maybeUpload(path string) string {
	if u.err != nil {
		return ""
	}
	if !IsBlob(path) {
		return path
	}
	if u.dir == "" {
		u.dir, u.err = ioutil.TempDir("", "heightmap")
		if u.err != nil {
			return ""
		}
	}
	files := expandShp(path)
	for _, f := range files {
		u.files = append(u.files, [2]string{
			filepath.Join(u.dir, filepath.Base(f)),
			f,
		})
	}
	return filepath.Join(u.dir, filepath.Base(files[0]))
}

// upload copies the collected files into blob storage.
func (u *uploader) upload(ctx context.Context) error {
	if u.err != nil {
		return u.err
	}
	for _, files := range u.files {
		r, err := os.Open(files[0])
		if err != nil {
			return fmt.Errorf("heightmap: opening file '%s' for upload: %s", files[0], err)
		}
		defer r.Close()
		bucketName, key, err := splitBlob(files[1])
		if err != nil {
			return fmt.Errorf("heightmap: parsing upload location '%s': %s", files[1], err)
		}
		bucket, err := OpenBucket(ctx, bucketName)
		if err != nil {
			return fmt.Errorf("heightmap: opening bucket to upload file '%s': %s", files[1], err)
		}
		w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{})
		if err != nil {
			return fmt.Errorf("heightmap: opening writer to upload file '%s': %s", files[1], err)
		}
		defer w.Close()
		if _, err := io.Copy(w, r); err != nil {
			return fmt.Errorf("heightmap: uploading file '%s' to '%s': %s", files[0], files[1], err)
		}
	}
	return nil
}

// expandShp returns the given file + associated [.dbf, .shx, .prj]
// files if the given file has the .shp extension, and returns the given
// file otherwise.
func expandShp(filename string) []string {
	o := []string{filename}
	ext := filepath.Ext(filename)
	if ext != ".shp" {
		return o
	}
	for _, newExt := range []string{".dbf", ".shx", ".prj"} {
		o = append(o, filename[0:len(filename)-4]+newExt)
	}
	return o
}
