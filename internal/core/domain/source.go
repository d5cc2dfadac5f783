package domain

// SourceType identifies where a source stores its images.
type SourceType string

// Available source types.
const (
	// SourceTypeGoogleDrive is a shared Google Drive folder.
	SourceTypeGoogleDrive SourceType = "GOOGLE_DRIVE"

	// SourceTypeLocalFile is a folder on the local machine.
	SourceTypeLocalFile SourceType = "LOCAL_FILE"

	// SourceTypeAWSS3 is an S3 bucket.
	SourceTypeAWSS3 SourceType = "AWS_S3"
)

// IsValid returns true if the source type is recognised.
func (t SourceType) IsValid() bool {
	switch t {
	case SourceTypeGoogleDrive, SourceTypeLocalFile, SourceTypeAWSS3:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t SourceType) String() string {
	return string(t)
}

// Description returns a human-readable description of the source type.
func (t SourceType) Description() string {
	switch t {
	case SourceTypeGoogleDrive:
		return "Google Drive"
	case SourceTypeLocalFile:
		return "Local File"
	case SourceTypeAWSS3:
		return "AWS S3"
	default:
		return "Unknown"
	}
}

// SourceDocument describes a search source.
// Documents are owned by the source registry, loaded once at startup and
// referenced by Key everywhere else.
type SourceDocument struct {
	// Key is the primary key used in SourceRows and CardDocuments.
	Key string `json:"key"`

	// Identifier is the source's external identifier (e.g. a drive folder ID).
	Identifier string `json:"identifier"`

	// Name is the human-readable name.
	Name string `json:"name"`

	// Type is where the source stores its images.
	Type SourceType `json:"source_type"`

	// ExternalLink optionally points at the source's public location.
	ExternalLink string `json:"external_link,omitempty"`

	// Description is optional free text.
	Description string `json:"description,omitempty"`
}

// SourceRow is one entry in the user's source priority list.
// The position of a row in its slice is its priority; earlier ranks higher.
type SourceRow struct {
	// Key references a SourceDocument.
	Key string `json:"key"`

	// Enabled excludes the source from searches when false.
	Enabled bool `json:"enabled"`
}
