package mysql

const upsertRoomSQL = `
INSERT INTO rooms
  (id, name, type, price, image, features, rating, reviews, size_m2, guests, beds, description, gallery, amenities)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name        = VALUES(name),
  type        = VALUES(type),
  price       = VALUES(price),
  image       = VALUES(image),
  features    = VALUES(features),
  rating      = VALUES(rating),
  reviews     = VALUES(reviews),
  size_m2     = VALUES(size_m2),
  guests      = VALUES(guests),
  beds        = VALUES(beds),
  description = VALUES(description),
  gallery     = VALUES(gallery),
  amenities   = VALUES(amenities),
  updated_at  = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const roomColumns = `
  id, name, type, price, image, features, rating, reviews, size_m2, guests, beds, description, gallery, amenities
`

const listRoomsSQL = `SELECT` + roomColumns + `FROM rooms ORDER BY id`

const getRoomSQL = `SELECT` + roomColumns + `FROM rooms WHERE id = ?`
