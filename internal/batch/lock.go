// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package batch

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
)

// ErrTargetInUse is returned when another Run in this process holds the same target config.
var ErrTargetInUse = errors.New("target config is in use by another batch")

var targets sync.Map // absolute target config path -> *sync.Mutex

// acquire takes the per-target lock without waiting.
func acquire(targetConfig string) (func(), error) {
	key, err := filepath.Abs(targetConfig)
	if err != nil {
		key = filepath.Clean(targetConfig)
	}

	v, _ := targets.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)

	if !mu.TryLock() {
		return nil, fmt.Errorf("%w: %s", ErrTargetInUse, key)
	}

	return mu.Unlock, nil
}
