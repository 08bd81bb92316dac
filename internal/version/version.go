package version

// Version is the scraper version stamped into every page record.
const Version = "0.2.0"

// SchemaVersion identifies the page record layout in the checkpoint file.
// Bump it when fields are renamed or removed.
const SchemaVersion = 2
