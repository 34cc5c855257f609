package parser

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// MockChatClient 是 model.ToolCallingChatModel 的模拟实现
// 用于测试以及未配置API密钥时的本地降级
type MockChatClient struct {
	ExpectedResponse string
	ExpectedError    error

	ReceivedMessages []*schema.Message
}

// NewMockChatClient 创建一个返回固定响应的 MockChatClient
func NewMockChatClient(expectedResponse string, expectedError error) *MockChatClient {
	return &MockChatClient{
		ExpectedResponse: expectedResponse,
		ExpectedError:    expectedError,
		ReceivedMessages: make([]*schema.Message, 0),
	}
}

// Generate 模拟 LLM 的 Generate 方法，记录收到的消息后返回预设内容
func (m *MockChatClient) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	received := make([]*schema.Message, len(input))
	copy(received, input)
	m.ReceivedMessages = append(m.ReceivedMessages, received...)

	if m.ExpectedError != nil {
		return nil, m.ExpectedError
	}
	return schema.AssistantMessage(m.ExpectedResponse, nil), nil
}

// Stream 模拟 LLM 的 Stream 方法 (不支持流式)
func (m *MockChatClient) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	received := make([]*schema.Message, len(input))
	copy(received, input)
	m.ReceivedMessages = append(m.ReceivedMessages, received...)
	return nil, fmt.Errorf("streaming not implemented in MockChatClient")
}

// WithTools 模拟绑定工具，返回自身
func (m *MockChatClient) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

// GetReceivedMessages 返回所有调用中累积的已接收消息
func (m *MockChatClient) GetReceivedMessages() []*schema.Message {
	return m.ReceivedMessages
}
