// Command mediatag rewrites cover art and container metadata of media files
// through ffmpeg, verifies frame integrity, and inspects tags and streams.
//
// Subcommands:
//
//	apply     rewrite one file (cover, metadata) into a new output
//	batch     apply the same change to every media file in a directory
//	verify    compare decoded and advertised frame counts
//	meta      print container tags
//	covers    list or extract attached pictures
//	info      summarize streams and format
//	history   show recorded apply and verify outcomes
//	status    report tool, directory, and ledger health
//	config    create or validate the configuration file
package main
