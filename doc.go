// Package nnvm is a neural-network graph compiler: it turns a declarative
// model tree (package model) into a sequence of kernel calls over concrete,
// pre-allocated buffers.
//
// The pipeline's packages, in order:
//
//	dim/arg   — symbolic dimension algebra and the recursive Arg value used
//	            for operator configuration
//	opreg     — the operator registry: pure shape inference per op, no graph
//	            or memory concerns
//	nnctx     — the builder a model tree drives to produce a logical graph:
//	            hierarchical naming plus shape-checked node construction
//	lower     — binds a logical graph's symbolic shapes to concrete sizes and
//	            fuses pure-view operators (split, tile, transpose, concat,
//	            merge) into stride rewrites, producing a storage graph
//	plan      — lifetime analysis and best-fit allocation over the storage
//	            graph, producing byte ranges in one shared workspace
//	exec      — materializes the storage graph and a plan into a flat,
//	            already-topologically-ordered step sequence an executor runs
//	execpb    — the wire form of an exec.Plan, for handing a compiled plan to
//	            an out-of-process executor
//
// package model holds the declarative model tree (attention, MLP, norm,
// embedding, and full architectures: LLaMA, Mamba, RWKV, CogVLM) that drives
// nnctx to build the logical graph this pipeline compiles.
package nnvm
