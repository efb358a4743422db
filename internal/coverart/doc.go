// Package coverart finds, extracts, and sniffs embedded cover pictures.
//
// A cover is a video stream whose attached_pic disposition is set. Locator
// lists those streams; Extractor copies one out to an image file; SniffImage
// checks that a replacement cover is actually an image before it is muxed in.
package coverart
