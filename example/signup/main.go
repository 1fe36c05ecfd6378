package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/formdirty"
	"github.com/tbxark/formdirty/agent"
	"github.com/tbxark/formdirty/command"
	"github.com/tbxark/formdirty/form"
	"github.com/tbxark/formdirty/patch"
	"github.com/tbxark/formdirty/types"
)

func main() {
	conf := flag.String("config", "config.json", "path to config file")
	flag.Parse()
	config, err := loadConfig(*conf)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	err = startApp(context.Background(), config)
	if err != nil {
		log.Fatalf("start app: %v", err)
	}
}

func startApp(ctx context.Context, config *Config) error {
	slog.SetLogLoggerLevel(slog.LevelInfo)
	if config.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	signupForm, err := form.New(Signup{Bio: "Hello!", Plan: "free"}, signupFields)
	if err != nil {
		return err
	}
	tracker := formdirty.New(signupForm)

	parser, generator, err := buildParsers(ctx, config)
	if err != nil {
		return err
	}
	formAgent := agent.NewAgent[Signup](
		"SignupFiller",
		"An agent that fills a signup form and reports unsubmitted edits",
		signupForm,
		tracker,
		SignupManager{},
		parser,
		generator,
	)
	runner := adk.NewRunner(ctx, adk.RunnerConfig{
		Agent: formAgent,
	})

	reader := bufio.NewReader(os.Stdin)
	fmt.Println("请输入字段修改（如：email = me@example.com），或输入 submit / reset：")
	for {
		fmt.Print("用户: ")
		input, rErr := reader.ReadString('\n')
		if rErr != nil {
			fmt.Println("输入错误或已结束。退出。")
			break
		}
		input = strings.TrimSpace(input)
		iter := runner.Run(ctx, []*schema.Message{schema.UserMessage(input)})
		for {
			event, ok := iter.Next()
			if !ok {
				break
			}
			if event.Err != nil {
				return event.Err
			}
			msg, mErr := event.Output.MessageOutput.GetMessage()
			if mErr != nil {
				return mErr
			}
			fmt.Printf("\n助手: %v\n", msg.Content)
		}
		dirty := make(map[string]bool)
		for _, name := range tracker.DirtyFields() {
			dirty[name] = true
		}
		fmt.Print(types.FormatFields(signupForm.Infos(func(name string) bool { return dirty[name] })))
		fmt.Printf("%s: %v\n======\n", formdirty.IndicatorClass, signupForm.HasClass(formdirty.IndicatorClass))
	}
	return nil
}

func buildParsers(ctx context.Context, config *Config) (command.Parser, patch.Generator, error) {
	localParser := command.NewLocalCommandParser()
	localGenerator := patch.NewLocalGenerator()
	if config.APIKey == "" {
		return localParser, localGenerator, nil
	}
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  config.APIKey,
		Model:   config.Model,
		BaseURL: config.BaseURL,
	})
	if err != nil {
		return nil, nil, err
	}
	toolParser, err := command.NewToolBasedCommandParser(cm)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create tool-based command parser: %w", err)
	}
	toolGenerator, err := patch.NewToolBasedGenerator(cm)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create tool-based patch generator: %w", err)
	}
	return command.NewFailbackCommandParser(toolParser, localParser),
		patch.NewFailbackGenerator(toolGenerator, localGenerator),
		nil
}
