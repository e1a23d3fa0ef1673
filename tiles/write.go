package tiles

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/paulmach/orb/maptile"
	"github.com/pkg/errors"
)

// Write writes one z/x/y line for each tile.
func Write(w io.Writer, tiles maptile.Tiles) error {
	for _, t := range tiles {
		if _, err := fmt.Fprintf(w, "%d/%d/%d\n", t.Z, t.X, t.Y); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile writes the tile list into a new file in a daily sub directory
// of dir (dir/20060102/150405.000.tiles) and returns the file name. The
// file is written as .tiles~ first and then renamed, so consumers never see
// a partial list.
func WriteFile(dir string, tiles maptile.Tiles) (string, error) {
	now := time.Now().UTC()
	dir = filepath.Join(dir, now.Format("20060102"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(err, "creating tile list dir")
	}
	fileName := filepath.Join(dir, now.Format("150405.000")+".tiles~")
	f, err := os.Create(fileName)
	if err != nil {
		return "", errors.Wrap(err, "creating tile list")
	}
	err = Write(f, tiles)
	f.Close()
	if err != nil {
		return "", errors.Wrapf(err, "writing %s", fileName)
	}
	final := fileName[:len(fileName)-1]
	if err := os.Rename(fileName, final); err != nil {
		return "", errors.Wrap(err, "renaming tile list")
	}
	return final, nil
}
