package sqlite

import (
	"database/sql"
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	// Import the SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/hrygo/gourmet/internal/profile"
	"github.com/hrygo/gourmet/store"
)

// SQLite is supported on a best-effort basis for development and testing.
// Embeddings are stored as little-endian float32 BLOBs and similarity search
// runs in the application layer, so it does not scale to production content
// volumes. Use Postgres with pgvector for real deployments.

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a SQLite database specified by the DSN in the profile.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	sqliteDB, err := sql.Open("sqlite", profile.DSN+"?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	driver := DB{db: sqliteDB, profile: profile}
	return &driver, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

// vectorToBlob converts a []float32 to a little-endian BLOB, validating the
// configured dimension. A mismatch is never truncated or padded.
func (d *DB) vectorToBlob(vec []float32) ([]byte, error) {
	if len(vec) != d.profile.EmbeddingDim {
		return nil, errors.Errorf("invalid vector dimension: got %d, want %d", len(vec), d.profile.EmbeddingDim)
	}
	buf := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(v))
	}
	return buf, nil
}

// blobToVector is the inverse of vectorToBlob.
func (d *DB) blobToVector(blob []byte) ([]float32, error) {
	expectedLen := d.profile.EmbeddingDim * 4
	if len(blob) != expectedLen {
		return nil, errors.Errorf("invalid BLOB length: got %d, want %d", len(blob), expectedLen)
	}
	vec := make([]float32, d.profile.EmbeddingDim)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4 : i*4+4]))
	}
	return vec, nil
}

// l2Distance computes the Euclidean distance between two vectors of equal
// length. Dimensions are validated at the BLOB boundary.
func l2Distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
