// Package sample acquires audio samples and publishes them to shared storage.
//
// AddSample validates the requested format and source host, acknowledges the
// request, pulls audio through an AudioSource, uploads it to an ObjectStore,
// and returns a shared link. PickRandom lists the samples folder and links one
// entry at random. Acquisition and storage failures come back as rejected
// Outcomes so command handlers can answer with a reaction instead of an error.
package sample
