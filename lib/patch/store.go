package patch

import (
	"context"
	"errors"
	"fmt"

	"dugout-backend/lib/blobstore"
)

// Load fetches the patch list adjacent to key, reporting whether one
// exists.
func Load(ctx context.Context, store blobstore.Store, key string) (List, bool, error) {
	patchKey := blobstore.PatchListKey(key)
	data, err := store.Get(ctx, patchKey)
	if errors.Is(err, blobstore.ErrNotExist) {
		return List{}, false, nil
	}
	if err != nil {
		return List{}, false, fmt.Errorf("load patch list %s: %w", patchKey, err)
	}
	list, err := DecodeList(data)
	if err != nil {
		return List{}, false, fmt.Errorf("load patch list %s: %w", patchKey, err)
	}
	return list, true, nil
}

// ApplyFromStore applies the patch list adjacent to key to doc when
// one exists. Returns whether a list was found and applied.
func ApplyFromStore(ctx context.Context, store blobstore.Store, key string, doc any) (bool, error) {
	list, ok, err := Load(ctx, store, key)
	if err != nil || !ok {
		return false, err
	}
	if err := list.Apply(doc); err != nil {
		return false, fmt.Errorf("apply patch list for %s: %w", key, err)
	}
	return true, nil
}
