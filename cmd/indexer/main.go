// 离线索引构建器：从静态语料与文档目录生成 embedding 索引文件，
// 服务进程启动时只读加载。
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"krishisahay/internal/app/bootstrap"
	"krishisahay/internal/domain/knowledge"
	"krishisahay/internal/platform/config"
	applog "krishisahay/internal/platform/log"
)

func main() {
	corpusPath := flag.String("corpus", "data/agricultural_knowledge.json", "静态语料 JSON（Document 数组）")
	docsDir := flag.String("docs", "", "可选：补充文档目录（txt/md/pdf/docx）")
	outPath := flag.String("out", "", "输出索引路径，缺省用 KNOWLEDGE_INDEX_PATH")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Config load failed: %v\n", err)
		os.Exit(1)
	}

	applog.Init(applog.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	if !cfg.Knowledge.HasEmbedding() {
		applog.Fatal("❌ Embedding not configured, cannot build index")
	}

	out := *outPath
	if out == "" {
		out = cfg.Knowledge.IndexPath
	}

	documents, err := loadCorpus(*corpusPath)
	if err != nil {
		applog.Fatalf("❌ Failed to load corpus: %v", err)
	}
	applog.Infof("✅ Loaded %d corpus documents", len(documents))

	if *docsDir != "" {
		parsed, err := parseDocuments(*docsDir)
		if err != nil {
			applog.Fatalf("❌ Failed to parse documents: %v", err)
		}
		applog.Infof("✅ Parsed %d supplementary documents", len(parsed))
		documents = append(documents, parsed...)
	}

	if len(documents) == 0 {
		applog.Fatal("❌ No documents to index")
	}

	embedder := bootstrap.BuildEmbedder(&cfg.Knowledge)

	texts := make([]string, len(documents))
	for i, doc := range documents {
		texts[i] = doc.Title + " " + doc.Content
	}

	applog.Infof("🔨 Embedding %d documents (model: %s, dims: %d)...",
		len(documents), cfg.Knowledge.EmbeddingModel, embedder.Dims())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		applog.Fatalf("❌ Embedding failed: %v", err)
	}

	index := &knowledge.Index{
		Model:     cfg.Knowledge.EmbeddingModel,
		Dims:      embedder.Dims(),
		BuiltAt:   time.Now().UTC(),
		Documents: documents,
		Vectors:   vectors,
	}
	if err := index.Validate(); err != nil {
		applog.Fatalf("❌ Index validation failed: %v", err)
	}
	if err := index.Save(out); err != nil {
		applog.Fatalf("❌ Failed to save index: %v", err)
	}

	applog.Infof("✅ Index built: %s (%d documents)", out, index.Size())
}

func loadCorpus(path string) ([]knowledge.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var documents []knowledge.Document
	if err := json.Unmarshal(data, &documents); err != nil {
		return nil, fmt.Errorf("parse corpus JSON: %w", err)
	}
	for i := range documents {
		if documents[i].ID == "" {
			documents[i].ID = fmt.Sprintf("corpus-%d", i+1)
		}
	}
	return documents, nil
}

func parseDocuments(dir string) ([]knowledge.Document, error) {
	parsers := knowledge.NewParserRegistry()

	var documents []knowledge.Document
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		parser, err := parsers.Get(d.Name())
		if err != nil {
			applog.Debug("skipping unsupported file", "file", d.Name())
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		result, err := parser.Parse(f, d.Name())
		if err != nil {
			applog.Warnf("⚠️  Failed to parse %s: %v", d.Name(), err)
			return nil
		}
		documents = append(documents, knowledge.Document{
			ID:      fmt.Sprintf("file-%d", len(documents)+1),
			Title:   result.Title,
			Content: result.Content,
		})
		return nil
	})
	return documents, err
}
