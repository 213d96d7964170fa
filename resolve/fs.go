package resolve

import (
	"context"
	"os"
)

// OSFS probes the local filesystem.
type OSFS struct{}

func (OSFS) Exists(ctx context.Context, name string) bool {
	if ctx.Err() != nil {
		return false
	}
	_, err := os.Stat(name)
	return err == nil
}

func (OSFS) Stat(ctx context.Context, name string) (FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return FileInfo{}, err
	}
	st, err := os.Stat(name)
	if err != nil {
		return FileInfo{}, err
	}
	return FileInfo{
		ModTime: st.ModTime(),
		Size:    st.Size(),
		IsDir:   st.IsDir(),
	}, nil
}
