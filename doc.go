// Package ocoprec 是 OCOP 商品的基于内容的推荐查询层。
//
// 设计要点：
// - Artifact-first: 离线产物（元数据、预计算推荐、相似度矩阵、行号映射、商品表）加载一次后只读共享
// - Pipeline-first: 每个查询由 Node 串联（Recall → Filter → ReRank），每个阶段可单独测试
// - Canonical ID: 所有商品 ID 在产物边界规范化为同一种字符串形式
//
// 查询入口见 service 包，命令行入口见 cmd/ocoprec。
package ocoprec

import "github.com/rushteam/ocoprec/pipeline"

// 轻量 facade：便于直接 import "ocoprec" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
