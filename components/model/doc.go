/*
Package model 定义模型后端组件的接口与调用选项。

链只依赖 Backend 接口完成推理调用，具体的服务商适配器位于 backend 目录下。
*/
package model
