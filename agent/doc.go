// Package agent implements a bounded-iteration tool-calling loop.
//
// It drives a conversation with a language model that can request
// execution of externally-defined tools, executes those tools through an
// MCP session, feeds the normalized results back, and repeats until the
// model stops requesting tools or the iteration cap is hit.
//
// The package is organized around these core concepts:
//
//   - Loop: the orchestrator holding the run's transcript, issuing
//     completions, dispatching tool calls in model order, and enforcing
//     the iteration cap.
//   - Transcript: the append-only conversation, which guarantees every
//     requested tool call is answered in order.
//   - ToolSession: the capability-session surface the loop invokes;
//     satisfied by *mcpclient.Session.
//   - EventEmitter: typed event stream for host application integration.
//
// # Quick Start
//
//	session := mcpclient.New(serverSpec)
//	if err := session.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Close()
//
//	loop := agent.NewLoop(client, session, agent.Config{
//	    Model:        "gpt-4o",
//	    SystemPrompt: prompt,
//	})
//	defer loop.Close()
//
//	result, err := loop.Run(ctx, "Create a quiz with three questions")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Output)
package agent
