package utils

// Local run notes. The swagger general info lives on cmd/api/main.go.

//job store (optional, falls back to memory)
//docker run -p 6379:6379 -d redis

//qdrant, gRPC on 6334
//docker run -p 6333:6333 -p 6334:6334 -v vectorDBData:/qdrant/storage qdrant/qdrant

//no docker: embedded store, no semantic cache
//RAG_VECTOR_STORE=chromem RAG_CHROMEM_PATH=./chromem_data go run ./cmd/api

//swagger init
//swag init -g cmd/api/main.go --parseDependency --parseInternal --dir ./ --output ./cmd/api/docs
