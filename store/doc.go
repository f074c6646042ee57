/*
Package store 持久化修复循环的终态（accepted、exhausted、failed）与每次尝试。

RunStore 实现 repair.Recorder，运行记录写入 synthdoc_runs，尝试历史写入
synthdoc_attempts。未收敛的产物同样落盘，便于人工修复或再次投喂。
*/
package store
