/*
Package catalog keeps a record of converted assets in a SQLite database.

Every asset is stored with the SHA-1 of the source image and a fingerprint of
the options it was converted with, so unchanged sources can be skipped, and
with its compressed artifacts so parts can be merged without reading them
back from disk.
*/
package catalog

import (
	"bytes"
	"crypto/sha1"
	"database/sql"
	"fmt"
	"image"

	"github.com/bodgit/snestile/asset"
	"github.com/bodgit/snestile/palette"
	"github.com/bodgit/snestile/tilemap"
	_ "github.com/mattn/go-sqlite3"
)

// Catalog is an open asset database.
type Catalog struct {
	db *sql.DB
}

// Open opens the database in file, creating it if necessary.
func Open(file string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=5000", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS source (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL, options TEXT NOT NULL, UNIQUE(sha1, options))"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS asset (id INTEGER PRIMARY KEY NOT NULL, name TEXT NOT NULL UNIQUE, base TEXT NOT NULL, part INTEGER NOT NULL, bpp INTEGER NOT NULL, tile_width INTEGER NOT NULL, tile_height INTEGER NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, layout INTEGER NOT NULL, source_id INTEGER NOT NULL, tiles BLOB NOT NULL, map BLOB, palette BLOB NOT NULL, FOREIGN KEY(source_id) REFERENCES source(id))"); err != nil {
		db.Close()
		return nil, err
	}

	return &Catalog{
		db: db,
	}, nil
}

// Close closes the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Checksum returns the SHA-1 of b as used to identify a source.
func Checksum(b []byte) string {
	return fmt.Sprintf("%X", sha1.Sum(b))
}

// Record is one catalogued asset.
type Record struct {
	Name    string
	Base    string
	Part    int
	SHA1    string
	Options string

	BitDepth int
	TileSize image.Point
	Columns  int
	Rows     int
	Layout   tilemap.Layout

	Tiles   []byte
	Map     []byte
	Palette []byte
}

// Asset rebuilds the asset from the stored artifacts.
func (r *Record) Asset() (*asset.Asset, error) {
	a := &asset.Asset{
		Name:     r.Name,
		BitDepth: r.BitDepth,
		Columns:  r.Columns,
		Rows:     r.Rows,
		Layout:   r.Layout,
	}

	var err error
	if a.Tiles, err = decodeTiles(r.Tiles, r.TileSize, r.BitDepth); err != nil {
		return nil, err
	}
	a.TileSize = r.TileSize

	if r.Map != nil {
		if a.Words, err = tilemap.ReadWords(bytes.NewReader(r.Map)); err != nil {
			return nil, err
		}
	}

	colors, err := palette.ReadBinary(bytes.NewReader(r.Palette))
	if err != nil {
		return nil, err
	}
	a.Palette = palette.FromColors(colors, r.BitDepth, palette.Background)

	return a, nil
}

func (c *Catalog) addSource(sha, options string) (int64, error) {
	var id int64
	switch err := c.db.QueryRow("SELECT id FROM source WHERE sha1 = ? AND options = ?", sha, options).Scan(&id); err {
	case sql.ErrNoRows:
		result, err := c.db.Exec("INSERT INTO source (sha1, options) VALUES (?, ?)", sha, options)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	case nil:
		return id, nil
	default:
		return 0, err
	}
}

// Add records a, converted from a source with the given checksum and
// options, replacing any earlier asset of the same name.
func (c *Catalog) Add(a *asset.Asset, sha, options string) error {
	source, err := c.addSource(sha, options)
	if err != nil {
		return err
	}

	tiles, err := a.MarshalTiles()
	if err != nil {
		return err
	}

	// NULL for sprites
	var words interface{}
	if a.HasMap() {
		words = compress(tilemap.MarshalWords(a.Words))
	}

	pal, err := a.Palette.MarshalBinary()
	if err != nil {
		return err
	}

	base, part, ok := asset.ParsePartName(a.Name)
	if !ok {
		base, part = a.Name, 0
	}

	if _, err = c.db.Exec("INSERT OR REPLACE INTO asset (name, base, part, bpp, tile_width, tile_height, width, height, layout, source_id, tiles, map, palette) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", a.Name, base, part, a.BitDepth, a.TileSize.X, a.TileSize.Y, a.Columns, a.Rows, int(a.Layout), source, compress(tiles), words, compress(pal)); err != nil {
		return err
	}

	return nil
}

const selectRecord = "SELECT a.name, a.base, a.part, s.sha1, s.options, a.bpp, a.tile_width, a.tile_height, a.width, a.height, a.layout, a.tiles, a.map, a.palette FROM asset AS a JOIN source AS s ON a.source_id = s.id"

type scanner interface {
	Scan(...interface{}) error
}

func scanRecord(s scanner) (*Record, error) {
	r := new(Record)
	var layout int
	if err := s.Scan(&r.Name, &r.Base, &r.Part, &r.SHA1, &r.Options, &r.BitDepth, &r.TileSize.X, &r.TileSize.Y, &r.Columns, &r.Rows, &layout, &r.Tiles, &r.Map, &r.Palette); err != nil {
		return nil, err
	}
	r.Layout = tilemap.Layout(layout)

	var err error
	if r.Tiles, err = decompress(r.Tiles); err != nil {
		return nil, fmt.Errorf("decompressing tiles of %s: %w", r.Name, err)
	}
	if r.Map, err = decompress(r.Map); err != nil {
		return nil, fmt.Errorf("decompressing map of %s: %w", r.Name, err)
	}
	if r.Palette, err = decompress(r.Palette); err != nil {
		return nil, fmt.Errorf("decompressing palette of %s: %w", r.Name, err)
	}

	return r, nil
}

// Find returns the asset called name, or nil if there isn't one.
func (c *Catalog) Find(name string) (*Record, error) {
	r, err := scanRecord(c.db.QueryRow(selectRecord+" WHERE a.name = ?", name))
	switch err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return r, nil
	default:
		return nil, err
	}
}

// Unchanged returns true if the asset called name was converted from the
// same source with the same options.
func (c *Catalog) Unchanged(name, sha, options string) (bool, error) {
	r, err := c.Find(name)
	if err != nil || r == nil {
		return false, err
	}
	return r.SHA1 == sha && r.Options == options, nil
}

// Parts returns every part of base in part order.
func (c *Catalog) Parts(base string) ([]*Record, error) {
	rows, err := c.db.Query(selectRecord+" WHERE a.base = ? AND a.part > 0 ORDER BY a.part", base)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

// Bases returns the base name of every set of parts in name order.
func (c *Catalog) Bases() ([]string, error) {
	rows, err := c.db.Query("SELECT DISTINCT base FROM asset WHERE part > 0 ORDER BY base")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bases []string
	for rows.Next() {
		var base string
		if err := rows.Scan(&base); err != nil {
			return nil, err
		}
		bases = append(bases, base)
	}

	return bases, rows.Err()
}
