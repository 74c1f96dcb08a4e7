package store

// Schema v1 - photos, albums and album membership
const schemaV1 = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
  version INTEGER PRIMARY KEY,
  applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- One row per media file, keyed by canonical absolute path
CREATE TABLE IF NOT EXISTS photos (
  path TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  date_taken INTEGER NOT NULL,
  width INTEGER NOT NULL DEFAULT 0,
  height INTEGER NOT NULL DEFAULT 0,
  source_type TEXT NOT NULL,
  is_favorite INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_photos_date_taken ON photos(date_taken DESC);

CREATE TABLE IF NOT EXISTS albums (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS album_photos (
  album_id INTEGER NOT NULL REFERENCES albums(id) ON DELETE CASCADE,
  photo_path TEXT NOT NULL REFERENCES photos(path) ON DELETE CASCADE,
  PRIMARY KEY (album_id, photo_path)
);
`

// Schema v2 - media type column and membership lookups by photo
const schemaV2 = `
ALTER TABLE photos ADD COLUMN media_type TEXT NOT NULL DEFAULT 'photo';

CREATE INDEX IF NOT EXISTS idx_photos_favorite ON photos(is_favorite, date_taken DESC);
CREATE INDEX IF NOT EXISTS idx_album_photos_path ON album_photos(photo_path);
`
