// Package archive unpacks downloaded release archives. Two container
// formats exist on the mirror: zip (Windows, macOS) and bzip2-compressed
// tarballs (everything else). Both paths guard against entries escaping
// the destination directory.
package archive
