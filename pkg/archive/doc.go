// Package archive stores immutable documents under slash separated keys.
//
// Three drivers are available: Nop discards writes, Local writes below a
// directory, and S3 writes objects to a bucket (MinIO and other S3
// compatible services work through Endpoint and ForcePathStyle). Put
// overwrites existing keys, so writing the same document twice is harmless.
package archive
