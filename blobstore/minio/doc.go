// Package minio stores vocabularies on MinIO and other S3-compatible
// servers (Ceph, SeaweedFS, Garage) without pulling in the AWS SDK.
//
//	store, err := minio.New(ctx, minio.Config{
//	    Endpoint:  "localhost:9000",
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	    Bucket:    "vocabularies",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	v, err := vocabulary.Load(ctx, store, "orb-1k.kmaj")
package minio
