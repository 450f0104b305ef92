// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package naming

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"gitlab.com/tozd/go/errors"
)

// ExistsFunc reports whether a path is already present on disk
type ExistsFunc func(ctx context.Context, path string) (bool, error)

// 🎫 Reserver resolves destination name conflicts. The check-and-claim step is
// serialized per directory, and a name handed out once is never handed out
// again by the same Reserver, so concurrent workers never pick the same name.
type Reserver struct {
	exists ExistsFunc

	mu   sync.Mutex
	dirs map[string]*dirClaims
}

type dirClaims struct {
	mu      sync.Mutex
	claimed map[string]struct{}
}

// 🏭 NewReserver creates a reserver that probes the filesystem with exists
func NewReserver(exists ExistsFunc) *Reserver {
	return &Reserver{
		exists: exists,
		dirs:   make(map[string]*dirClaims),
	}
}

func (r *Reserver) claims(dir string) *dirClaims {
	r.mu.Lock()
	defer r.mu.Unlock()

	dir = filepath.Clean(dir)
	d, ok := r.dirs[dir]
	if !ok {
		d = &dirClaims{claimed: make(map[string]struct{})}
		r.dirs[dir] = d
	}
	return d
}

// Reserve returns name if it is free in dir, otherwise the first free
// "stem(N).ext" variant scanning from N=1, and claims the result.
func (r *Reserver) Reserve(ctx context.Context, dir, name string) (string, error) {
	d := r.claims(dir)
	d.mu.Lock()
	defer d.mu.Unlock()

	free, err := NextFreeName(name, func(candidate string) (bool, error) {
		if _, ok := d.claimed[candidate]; ok {
			return true, nil
		}
		return r.exists(ctx, filepath.Join(dir, candidate))
	})
	if err != nil {
		return "", errors.Errorf("resolving name conflict for %s: %w", name, err)
	}

	d.claimed[free] = struct{}{}
	return free, nil
}

// NextFreeName returns name when taken reports it free, otherwise the first
// "stem(N).ext" with N counting up from 1 that is free.
func NextFreeName(name string, taken func(string) (bool, error)) (string, error) {
	used, err := taken(name)
	if err != nil {
		return "", err
	}
	if !used {
		return name, nil
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if stem == "" {
		stem, ext = name, ""
	}

	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s(%d)%s", stem, i, ext)
		used, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
	}
}
