// Package kmajority clusters binary descriptors with K-Majority.
//
// K-Majority is the binary counterpart of k-means: points are assigned to
// their nearest centroid by Hamming distance, and each centroid is
// recomputed as the per-bit majority vote of its members. The result is a
// vocabulary of binary centroids, typically used for bag-of-words image
// retrieval over ORB, BRIEF or similar descriptors.
//
// # Quick Start
//
//	data, _ := dataset.FromBytes(raw, 32) // 256-bit descriptors
//	km, _ := kmajority.New(1000, data,
//		kmajority.WithMaxIterations(20),
//		kmajority.WithIndexType(nn.Hierarchical),
//	)
//	res, _ := km.Cluster(ctx)
//	fmt.Println(res.State, res.Iterations)
//
// # Vocabularies
//
// Centroids can be persisted to any blobstore.Store and reused:
//
//	store := blobstore.NewLocalStore("./vocab")
//	_ = km.SaveVocabulary(ctx, store, "orb-1k.kmaj")
//
//	v, _ := vocabulary.Load(ctx, store, "orb-1k.kmaj")
//	a, _ := kmajority.Assign(ctx, v, queryData)
//
// # Determinism
//
// Ties are resolved toward the lowest index everywhere: nearest-centroid
// search, donor selection and victim selection during empty-cluster
// recovery. A bit whose vote is exactly half of the members is 0. With
// WithSeed, identical inputs produce identical results regardless of the
// worker count or index type.
package kmajority
