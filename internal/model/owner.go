package model

import "time"

// Owner represents a newspaper-delivery business owner as stored in the
// `owners` table.  Owners are the root of tenancy: every employee and
// newspaper belongs to exactly one owner, and subscriptions, payments and
// deliveries are owned transitively through the newspaper.  The json tags
// are omitted because these structs are used internally by the repository
// layer; handlers define separate response types with appropriate tags.
//
// Fields:
//  ID           – primary key identifier of the owner.
//  Name         – display name of the business owner.
//  Email        – unique email address used to log in.
//  PasswordHash – bcrypt hashed password.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Owner struct {
    ID           uint64    // owners.id
    Name         string    // owners.name
    Email        string    // owners.email
    PasswordHash string    // owners.password_hash
    CreatedAt    time.Time // owners.created_at
    UpdatedAt    time.Time // owners.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user (owner or employee) and contains
// metadata for expiry and revocation.  The plain token is not stored;
// only its SHA‑256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  Role      – account type the token was issued for (OWNER or EMPLOYEE).
//  TokenHash – SHA‑256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    Role      string     // refresh_tokens.role
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
