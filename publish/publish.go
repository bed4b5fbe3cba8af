// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package publish uploads rendered charts to Google Cloud Storage.
package publish

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"

	"golang.org/x/oauth2/google"

	"google.golang.org/api/option"
)

type AuthOption int

const (
	AuthNone AuthOption = iota
	AuthAppDefault
	NumAuthOptions
)

var authOptString = [NumAuthOptions]string{
	"none",
	"app-default",
}

func (a *AuthOption) String() string {
	return authOptString[*a]
}

func (a *AuthOption) Set(input string) error {
	for i := range authOptString {
		if authOptString[i] == input {
			*a = AuthOption(i)
			return nil
		}
	}
	return fmt.Errorf("unrecognized authentication option: %s", input)
}

// ObjectNames returns the names under which the files in paths are
// stored: their paths relative to the deepest directory containing
// all of them, under prefix. The relative layout of the files is kept,
// so an HTML page linking to charts by relative path still finds them.
func ObjectNames(prefix string, paths []string) ([]string, error) {
	abs := make([]string, len(paths))
	for i, p := range paths {
		a, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		abs[i] = a
	}
	base := commonDir(abs)
	names := make([]string, len(abs))
	for i, a := range abs {
		rel, err := filepath.Rel(base, a)
		if err != nil {
			return nil, err
		}
		names[i] = path.Join(prefix, filepath.ToSlash(rel))
	}
	return names, nil
}

// commonDir returns the deepest directory containing every path in abs.
func commonDir(abs []string) string {
	if len(abs) == 0 {
		return ""
	}
	dir := filepath.Dir(abs[0])
	for _, p := range abs[1:] {
		for !within(dir, p) {
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	return dir
}

func within(dir, p string) bool {
	rel, err := filepath.Rel(dir, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Upload copies each file in paths into bucket, named by ObjectNames,
// and returns the object names in order. Existing objects are
// replaced.
func Upload(ctx context.Context, bucket, prefix string, paths []string, auth AuthOption) ([]string, error) {
	objects, err := ObjectNames(prefix, paths)
	if err != nil {
		return nil, err
	}
	var opts []option.ClientOption
	switch auth {
	case AuthAppDefault:
		creds, err := google.FindDefaultCredentials(ctx, storage.ScopeReadWrite)
		if err != nil {
			return nil, err
		}
		opts = append(opts, option.WithCredentials(creds))
	case AuthNone:
		return nil, fmt.Errorf("authentication required for upload")
	default:
		return nil, fmt.Errorf("unknown authentication method")
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	b := client.Bucket(bucket)
	names := make([]string, 0, len(paths))
	for i, p := range paths {
		name := objects[i]
		if err := uploadFile(ctx, b.Object(name), p); err != nil {
			return names, fmt.Errorf("gs://%s/%s: %w", bucket, name, err)
		}
		names = append(names, name)
	}
	return names, nil
}

func uploadFile(ctx context.Context, o *storage.ObjectHandle, p string) error {
	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer f.Close()

	wc := o.NewWriter(ctx)
	wc.ContentType = mime.TypeByExtension(filepath.Ext(p))
	if _, err := io.Copy(wc, f); err != nil {
		wc.Close()
		return err
	}
	return wc.Close()
}
