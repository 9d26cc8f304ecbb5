// Package s3 provides an Amazon S3 implementation of blobstore.Store.
//
// # Usage
//
//	store, err := s3.NewStoreFromConfig(ctx, "my-bucket", "vocabularies/",
//	    config.WithRegion("eu-central-1"),
//	)
//	if err != nil { ... }
//
//	err = km.SaveVocabulary(ctx, store, "orb-1k.kmj")
//
// # Features
//
//   - Range reads for partial fetches
//   - CRC32C-checksummed uploads; multipart uploads above PartSize
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
