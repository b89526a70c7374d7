// Package dropbox publishes samples to Dropbox.
//
// Client implements sample.ObjectStore on top of the Dropbox API SDK: uploads
// use autorename so existing samples are never overwritten, shared links are
// created on demand and reused when one already exists, and folder listings
// follow list_folder/continue cursors until every page has been read.
package dropbox
