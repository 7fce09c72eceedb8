// Package archive writes the weekly snapshots and market history to a
// single CSV file, optionally xz-compressed.
package archive

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/rustyeddy/champs/ledger"
)

const (
	recordSnapshot = "snapshot"
	recordPrice    = "price"
)

var header = []string{"record", "id", "week", "student_id", "symbol", "total_value", "profit_loss", "price", "timestamp"}

// ErrBadArchive is returned by Read for rows it cannot interpret.
var ErrBadArchive = errors.New("bad archive")

// Archive is the exported history of a competition.
type Archive struct {
	Snapshots []ledger.Snapshot
	Prices    []ledger.PricePoint
}

// Write encodes a as CSV. Snapshots come first, then price points, each in
// the order given.
func Write(w io.Writer, a Archive) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, s := range a.Snapshots {
		err := cw.Write([]string{
			recordSnapshot,
			strconv.FormatInt(s.ID, 10),
			strconv.Itoa(s.Week),
			strconv.FormatInt(s.StudentID, 10),
			"",
			f(s.TotalValue),
			f(s.ProfitLoss),
			"",
			s.Timestamp.UTC().Format(time.RFC3339),
		})
		if err != nil {
			return err
		}
	}
	for _, p := range a.Prices {
		err := cw.Write([]string{
			recordPrice,
			strconv.FormatInt(p.ID, 10),
			strconv.Itoa(p.Week),
			"",
			p.Symbol,
			"",
			"",
			f(p.Price),
			"",
		})
		if err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read decodes an archive written by Write.
func Read(r io.Reader) (Archive, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)

	first, err := cr.Read()
	if err != nil {
		return Archive{}, fmt.Errorf("%w: header: %v", ErrBadArchive, err)
	}
	if strings.Join(first, ",") != strings.Join(header, ",") {
		return Archive{}, fmt.Errorf("%w: unexpected header %q", ErrBadArchive, first)
	}

	var a Archive
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			return a, nil
		}
		if err != nil {
			return Archive{}, fmt.Errorf("%w: %v", ErrBadArchive, err)
		}

		switch row[0] {
		case recordSnapshot:
			s, err := parseSnapshot(row)
			if err != nil {
				return Archive{}, fmt.Errorf("%w: line %d: %v", ErrBadArchive, line, err)
			}
			a.Snapshots = append(a.Snapshots, s)
		case recordPrice:
			p, err := parsePrice(row)
			if err != nil {
				return Archive{}, fmt.Errorf("%w: line %d: %v", ErrBadArchive, line, err)
			}
			a.Prices = append(a.Prices, p)
		default:
			return Archive{}, fmt.Errorf("%w: line %d: unknown record %q", ErrBadArchive, line, row[0])
		}
	}
}

// WriteFile writes a to path, compressing with xz when path ends in ".xz".
// The file is written under a temporary name and renamed into place.
func WriteFile(path string, a Archive) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}

	writeErr := writeTo(out, path, a)
	closeErr := out.Close()
	if writeErr != nil {
		_ = os.Remove(tmp)
		return writeErr
	}
	if closeErr != nil {
		_ = os.Remove(tmp)
		return closeErr
	}
	return os.Rename(tmp, path)
}

func writeTo(out io.Writer, path string, a Archive) error {
	if !compressed(path) {
		return Write(out, a)
	}
	xw, err := xz.NewWriter(out)
	if err != nil {
		return err
	}
	if err := Write(xw, a); err != nil {
		_ = xw.Close()
		return err
	}
	return xw.Close()
}

// ReadFile loads an archive written by WriteFile.
func ReadFile(path string) (Archive, error) {
	in, err := os.Open(path)
	if err != nil {
		return Archive{}, err
	}
	defer in.Close()

	var r io.Reader = in
	if compressed(path) {
		xr, err := xz.NewReader(in)
		if err != nil {
			return Archive{}, fmt.Errorf("%w: %v", ErrBadArchive, err)
		}
		r = xr
	}
	return Read(r)
}

func compressed(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xz")
}

func parseSnapshot(row []string) (ledger.Snapshot, error) {
	var (
		s   ledger.Snapshot
		err error
	)
	if s.ID, err = strconv.ParseInt(row[1], 10, 64); err != nil {
		return s, err
	}
	if s.Week, err = strconv.Atoi(row[2]); err != nil {
		return s, err
	}
	if s.StudentID, err = strconv.ParseInt(row[3], 10, 64); err != nil {
		return s, err
	}
	if s.TotalValue, err = strconv.ParseFloat(row[5], 64); err != nil {
		return s, err
	}
	if s.ProfitLoss, err = strconv.ParseFloat(row[6], 64); err != nil {
		return s, err
	}
	if s.Timestamp, err = time.Parse(time.RFC3339, row[8]); err != nil {
		return s, err
	}
	return s, s.Validate()
}

func parsePrice(row []string) (ledger.PricePoint, error) {
	var (
		p   ledger.PricePoint
		err error
	)
	if p.ID, err = strconv.ParseInt(row[1], 10, 64); err != nil {
		return p, err
	}
	if p.Week, err = strconv.Atoi(row[2]); err != nil {
		return p, err
	}
	p.Symbol = row[4]
	if p.Price, err = strconv.ParseFloat(row[7], 64); err != nil {
		return p, err
	}
	return p, p.Validate()
}

// f keeps full precision so a round trip through the archive is exact.
func f(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}
