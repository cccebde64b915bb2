package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
)

func main() {
	log.SetPrefix("plate-nutrition-api: ")
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	pool := getDBPool(cfg.DBURL)
	defer pool.Close()

	llm := cfg.openAIClient()
	h := newHandler(pool, cfg.estimator(llm), llm)

	fmt.Println("Starting gin app...")

	router := gin.Default()
	router.SetTrustedProxies(nil)
	h.registerRoutes(router)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
