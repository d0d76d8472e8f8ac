// Package target enumerates the platform tuples TeamSpeak publishes
// server archives for, and knows how each tuple maps to an archive
// format and a mirror filename.
package target
